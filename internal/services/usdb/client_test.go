package usdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"karaokeforge/internal/services/usdb"
)

const sampleSong = "#ARTIST:Queen\n#TITLE:Bohemian Rhapsody\n#LANGUAGE:English\n#VIDEO:v=fJ9rUzIMcZQ,co=cover.jpg\n: 0 4 60 Is\n"

func TestDownloadSongExtractsTextarea(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "link=gettxt") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html><textarea rows=\"20\">" + sampleSong + "</textarea></html>"))
	}))
	defer server.Close()

	client := usdb.NewClientWithHTTP(server.URL, "user", "pass", server.Client())
	text, err := client.DownloadSong(context.Background(), 123)
	if err != nil {
		t.Fatalf("download song: %v", err)
	}
	if !strings.HasPrefix(text, "#ARTIST:Queen") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestLoginRejectedDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>Login or Password invalid</html>"))
	}))
	defer server.Close()

	client := usdb.NewClientWithHTTP(server.URL, "user", "wrong", server.Client())
	if err := client.Login(context.Background()); err == nil {
		t.Fatal("expected login rejection")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	client := usdb.NewClientWithHTTP("http://example.invalid", "", "", http.DefaultClient)
	if err := client.Login(context.Background()); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestParseSongTags(t *testing.T) {
	tags := usdb.ParseSongTags(sampleSong)
	if tags.Artist != "Queen" || tags.Title != "Bohemian Rhapsody" {
		t.Fatalf("unexpected identity tags: %+v", tags)
	}
	if tags.Language != "English" {
		t.Fatalf("unexpected language: %q", tags.Language)
	}
	if tags.VideoID != "fJ9rUzIMcZQ" {
		t.Fatalf("unexpected video id: %q", tags.VideoID)
	}
}

func TestParseSongTagsStopsAtNotes(t *testing.T) {
	text := "#TITLE:Song\n: 0 2 50 hey\n#ARTIST:NotATag\n"
	tags := usdb.ParseSongTags(text)
	if tags.Artist != "" {
		t.Fatalf("tag parsing should stop at first note line, got %+v", tags)
	}
}
