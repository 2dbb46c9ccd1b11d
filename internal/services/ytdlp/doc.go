// Package ytdlp shells out to yt-dlp to download videos from sharing sites.
// The output filename is pinned to the video id so the pipeline's canonical
// base filename is stable; the extension stays engine-chosen.
package ytdlp
