// Package separator invokes the source-separation engine that splits one
// mixed audio stream into an instrumental and a vocal stem. The engine picks
// its own output filenames, so stems are located afterwards by suffix
// pattern inside the requested output directory.
package separator
