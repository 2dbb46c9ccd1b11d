package usdb

import (
	"bufio"
	"strings"
)

// SongTags holds the header tags of an UltraStar text file.
type SongTags struct {
	Artist   string
	Title    string
	Language string
	// VideoID is the sharing-site video reference from #VIDEO:v=<id>,...
	VideoID string
}

// ParseSongTags reads the #TAG: header lines of a tagged song text.
func ParseSongTags(text string) SongTags {
	var tags SongTags
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}
		key, value, ok := strings.Cut(line[1:], ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "ARTIST":
			tags.Artist = value
		case "TITLE":
			tags.Title = value
		case "LANGUAGE":
			tags.Language = value
		case "VIDEO":
			tags.VideoID = parseVideoReference(value)
		}
	}
	return tags
}

// parseVideoReference extracts the v= parameter of a #VIDEO tag value like
// "v=abc123,co=cover.jpg,bg=back.jpg".
func parseVideoReference(value string) string {
	for _, part := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(key, "v") {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
