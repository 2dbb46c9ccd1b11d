package workset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Suffix tokens making up the canonical naming vocabulary. Every stage output
// is named {base}.{suffix}.{ext}; suffixes never chain.
const (
	SuffixReduced    = "reduced"
	SuffixExtracted  = "extracted"
	SuffixNormalized = "normalized"
	SuffixHP2        = "hp2"
	SuffixHP5        = "hp5"
	SuffixVocals     = "vocals"
	SuffixDereverbed = "dereverbed"
)

var knownSuffixes = map[string]struct{}{
	SuffixReduced:    {},
	SuffixExtracted:  {},
	SuffixNormalized: {},
	SuffixHP2:        {},
	SuffixHP5:        {},
	SuffixVocals:     {},
	SuffixDereverbed: {},
}

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".ogg":  {},
	".m4a":  {},
	".opus": {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mkv":  {},
	".avi":  {},
	".mpg":  {},
	".mpeg": {},
	".flv":  {},
	".wmv":  {},
	".mov":  {},
}

// Containers old enough that downstream tooling chokes on them; acquisition
// transcodes these to mp4 before anything else runs.
var legacyVideoExtensions = map[string]struct{}{
	".avi":  {},
	".mpg":  {},
	".mpeg": {},
	".flv":  {},
	".wmv":  {},
	".mov":  {},
}

// CanonicalName builds the canonical artifact name {base}.{suffix}.{ext}.
// The suffix may be empty for the raw base file.
func CanonicalName(base, suffix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if suffix == "" {
		return base + "." + ext
	}
	return base + "." + suffix + "." + ext
}

// BaseFromPath derives the canonical base name from any path, stripping the
// extension and at most one known suffix token. Applying it to an already
// canonical name is stable, which is what forbids suffix chaining: a stage
// that renames X.reduced.mp3 resolves to base X, never to X.reduced.
func BaseFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		if _, ok := knownSuffixes[name[idx+1:]]; ok {
			name = name[:idx]
		}
	}
	return name
}

// IsAudioFile reports whether the path carries a known audio extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsVideoFile reports whether the path carries a known video extension.
func IsVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsLegacyVideoFile reports whether the path uses a legacy container format.
func IsLegacyVideoFile(path string) bool {
	_, ok := legacyVideoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FindAudioFiles lists audio files directly inside dir, sorted by name.
func FindAudioFiles(dir string) []string {
	return findByPredicate(dir, IsAudioFile)
}

// FindVideoFiles lists video files directly inside dir, sorted by name. A
// legacy container whose same-stem .mp4 sibling exists is superseded and
// excluded; the original stays on disk but no stage consumes it.
func FindVideoFiles(dir string) []string {
	found := findByPredicate(dir, IsVideoFile)
	out := make([]string, 0, len(found))
	for _, path := range found {
		if IsLegacyVideoFile(path) {
			mp4 := strings.TrimSuffix(path, filepath.Ext(path)) + ".mp4"
			if _, err := os.Stat(mp4); err == nil {
				continue
			}
		}
		out = append(out, path)
	}
	return out
}

func findByPredicate(dir string, match func(string) bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var found []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if match(full) {
			found = append(found, full)
		}
	}
	sort.Strings(found)
	return found
}
