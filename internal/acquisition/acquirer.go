package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
	"karaokeforge/internal/services/ffmpeg"
	"karaokeforge/internal/services/usdb"
	"karaokeforge/internal/services/ytdlp"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// MetaVideoPreexisting records whether a video file was already present
// before acquisition ran. Later stages use it to decide whether a freshly
// downloaded video needs remuxing.
const MetaVideoPreexisting = "videoPreexisting"

// Downloader fetches a video from a sharing site into a directory.
type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

// Transcoder covers the media operations acquisition needs.
type Transcoder interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	HasAudioStream(ctx context.Context, source string) (bool, error)
	TranscodeLegacy(ctx context.Context, source, dest string) error
}

// LyricsDatabase fetches tagged song texts and cover art by numeric song id.
type LyricsDatabase interface {
	Login(ctx context.Context) error
	DownloadSong(ctx context.Context, songID int) (string, error)
	DownloadCover(ctx context.Context, songID int) ([]byte, error)
}

// Acquirer guarantees a usable audio and/or video file exists in the job
// folder, downloading or extracting whatever is missing. Every failure here
// is fatal for the job; acquisition has no partial-success mode.
type Acquirer struct {
	cfg        *config.Config
	logger     *slog.Logger
	downloader Downloader
	transcoder Transcoder
	database   LyricsDatabase
}

// NewAcquirer creates the stage handler with real subprocess collaborators.
// The lyrics database is wired only when credentials are configured.
func NewAcquirer(cfg *config.Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = logging.NewNop()
	}
	var database LyricsDatabase
	if cfg.USDB.Username != "" {
		client, err := usdb.NewClient(cfg.USDB.BaseURL, cfg.USDB.Username, cfg.USDB.Password)
		if err != nil {
			logger.Warn("lyrics database client unavailable", logging.Error(err))
		} else {
			database = client
		}
	}
	return NewAcquirerWithDependencies(cfg, logger,
		ytdlp.NewClient(cfg.Tools.YtDlp),
		ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
		database,
	)
}

// NewAcquirerWithDependencies allows injecting collaborators (used in tests).
func NewAcquirerWithDependencies(cfg *config.Config, logger *slog.Logger, downloader Downloader, transcoder Transcoder, database LyricsDatabase) *Acquirer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Acquirer{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "acquisition")),
		downloader: downloader,
		transcoder: transcoder,
		database:   database,
	}
}

func (a *Acquirer) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepAcquisition, "prepare", "nil descriptor", nil)
	}
	if !fileutil.DirExists(d.Path()) {
		return services.Wrap(services.ErrValidation, stage.StepAcquisition, "prepare", fmt.Sprintf("job folder missing: %s", d.Path()), nil)
	}
	return nil
}

func (a *Acquirer) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := a.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepAcquisition)
		return err
	}
	d.MarkCompleted(stage.StepAcquisition)
	return nil
}

func (a *Acquirer) run(ctx context.Context, d *workset.Descriptor) error {
	if err := a.fetchDatabaseAssets(ctx, d); err != nil {
		return err
	}
	if err := a.normalizeLegacyVideos(ctx, d); err != nil {
		return err
	}

	audio := workset.FindAudioFiles(d.Path())
	video := workset.FindVideoFiles(d.Path())
	d.SetMeta(MetaVideoPreexisting, strconv.FormatBool(len(video) > 0))

	for _, path := range audio {
		d.AddInput(path)
	}
	for _, path := range video {
		d.AddInput(path)
	}
	if len(audio) > 0 {
		d.SetBase(workset.BaseFromPath(audio[0]))
	} else if len(video) > 0 {
		d.SetBase(workset.BaseFromPath(video[0]))
	}

	switch {
	case len(audio) > 0 && len(video) > 0:
		return nil
	case len(audio) > 0:
		if !d.Mode.RequiresVideo() {
			return nil
		}
		_, err := a.downloadVideo(ctx, d)
		return err
	case len(video) > 0:
		return a.deriveAudio(ctx, d, video[0])
	default:
		downloaded, err := a.downloadVideo(ctx, d)
		if err != nil {
			return err
		}
		return a.extractAudio(ctx, d, downloaded)
	}
}

// fetchDatabaseAssets pulls the tagged song text and cover art for
// database-sourced jobs before any folder decision runs. An already
// downloaded song text short-circuits; jobs without a song id skip entirely.
func (a *Acquirer) fetchDatabaseAssets(ctx context.Context, d *workset.Descriptor) error {
	if d.Mode != workset.ModeUSDB || d.SongID <= 0 {
		return nil
	}
	target := filepath.Join(d.Path(), strconv.Itoa(d.SongID)+".txt")
	if fileutil.Exists(target) {
		a.logger.Debug("song text already downloaded", logging.String("path", target))
		return nil
	}
	if a.database == nil {
		return services.Wrap(services.ErrConfiguration, stage.StepAcquisition, "database fetch",
			"song id set but no database credentials configured", nil)
	}

	err := services.Bounded(ctx, a.cfg.Workflow.DownloadTimeout, func(ctx context.Context) error {
		if err := a.database.Login(ctx); err != nil {
			return err
		}
		body, err := a.database.DownloadSong(ctx, d.SongID)
		if err != nil {
			return err
		}
		return os.WriteFile(target, []byte(body), 0o644)
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepAcquisition, "database fetch",
			strconv.Itoa(d.SongID), err)
	}
	d.AddOutput(target)
	d.AddKeep(target)
	a.logger.Info("downloaded song text", logging.String("dest", target))

	// Cover art is nice to have; its absence never fails the job.
	var cover []byte
	err = services.Bounded(ctx, a.cfg.Workflow.DownloadTimeout, func(ctx context.Context) error {
		var derr error
		cover, derr = a.database.DownloadCover(ctx, d.SongID)
		return derr
	})
	if err != nil {
		a.logger.Warn("cover download failed", logging.Error(err))
		return nil
	}
	coverPath := filepath.Join(d.Path(), "cover.jpg")
	if err := os.WriteFile(coverPath, cover, 0o644); err != nil {
		a.logger.Warn("cover write failed", logging.Error(err))
		return nil
	}
	d.AddOutput(coverPath)
	d.AddKeep(coverPath)
	return nil
}

// normalizeLegacyVideos transcodes legacy-container videos to mp4 before any
// downstream decision runs. The legacy source stays on disk untouched; the
// fresh .mp4 sibling supersedes it in every later video scan.
func (a *Acquirer) normalizeLegacyVideos(ctx context.Context, d *workset.Descriptor) error {
	for _, src := range workset.FindVideoFiles(d.Path()) {
		if !workset.IsLegacyVideoFile(src) {
			continue
		}
		dest := strings.TrimSuffix(src, filepath.Ext(src)) + ".mp4"
		a.logger.Info("transcoding legacy video container",
			logging.String("source", src),
			logging.String("dest", dest),
		)
		err := services.Bounded(ctx, a.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
			return a.transcoder.TranscodeLegacy(ctx, src, dest)
		})
		if err != nil {
			return services.Wrap(services.ErrExternalTool, stage.StepAcquisition, "transcode legacy video", src, err)
		}
		d.AddInput(src)
		d.AddOutput(dest)
	}
	return nil
}

// deriveAudio obtains audio when only a video is present: extract the track
// when the container has one, otherwise download a replacement video and
// extract from that.
func (a *Acquirer) deriveAudio(ctx context.Context, d *workset.Descriptor, video string) error {
	var hasAudio bool
	err := services.Bounded(ctx, a.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		var perr error
		hasAudio, perr = a.transcoder.HasAudioStream(ctx, video)
		return perr
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepAcquisition, "probe video", video, err)
	}
	if hasAudio {
		return a.extractAudio(ctx, d, video)
	}
	downloaded, err := a.downloadVideo(ctx, d)
	if err != nil {
		return err
	}
	return a.extractAudio(ctx, d, downloaded)
}

func (a *Acquirer) extractAudio(ctx context.Context, d *workset.Descriptor, video string) error {
	d.SetBase(workset.BaseFromPath(video))
	dest := d.CanonicalPath("", "mp3")
	err := services.Bounded(ctx, a.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return a.transcoder.ExtractAudio(ctx, video, dest)
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepAcquisition, "extract audio", video, err)
	}
	a.logger.Info("extracted audio track", logging.String("source", video), logging.String("dest", dest))
	d.AddInput(video)
	d.AddOutput(dest)
	return nil
}

func (a *Acquirer) downloadVideo(ctx context.Context, d *workset.Descriptor) (string, error) {
	ref, err := a.sourceReference(d)
	if err != nil {
		return "", err
	}
	a.logger.Info("downloading video", logging.String("url", ref))
	var path string
	err = services.Bounded(ctx, a.cfg.Workflow.DownloadTimeout, func(ctx context.Context) error {
		var derr error
		path, derr = a.downloader.Download(ctx, ref, d.Path())
		return derr
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stage.StepAcquisition, "download video", ref, err)
	}
	d.SetBase(workset.BaseFromPath(path))
	d.AddOutput(path)
	return path, nil
}

// sourceReference resolves where to download from: the descriptor's explicit
// URL first, then a video reference embedded in a companion tagged text file.
// No resolvable reference is fatal for the job.
func (a *Acquirer) sourceReference(d *workset.Descriptor) (string, error) {
	if url := strings.TrimSpace(d.SourceURL); url != "" {
		return url, nil
	}
	entries, err := os.ReadDir(d.Path())
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stage.StepAcquisition, "scan folder", d.Path(), err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		full := filepath.Join(d.Path(), entry.Name())
		body, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		tags := usdb.ParseSongTags(string(body))
		if tags.VideoID != "" {
			d.AddInput(full)
			return "https://www.youtube.com/watch?v=" + tags.VideoID, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, stage.StepAcquisition, "resolve source",
		"no source URL and no companion video reference", nil)
}

func (a *Acquirer) HealthCheck(ctx context.Context) stage.Health {
	if a.downloader == nil || a.transcoder == nil {
		return stage.Unhealthy(stage.StepAcquisition, "collaborators not configured")
	}
	return stage.Healthy(stage.StepAcquisition)
}
