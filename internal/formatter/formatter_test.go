package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	th "github.com/desertthunder/dzx/internal/testing"
)

func testPlaylist() *models.Playlist {
	return &models.Playlist{
		Name:        "Test Playlist",
		Description: "A test playlist",
		Duration:    420,
		TrackCount:  2,
		Tracks: []models.Track{
			{
				Title:        "Song One",
				Artist:       "Artist One",
				Contributors: []string{"Artist One", "Guest"},
				Album:        "Album One",
				Duration:     180,
			},
			{
				Title:        "Song Two",
				Artist:       "Artist Two",
				Contributors: []string{"Artist Two"},
				Duration:     240,
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "#,Title,Artist,Contributors,Album,Duration") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,Artist One,Artist One; Guest,Album One,180") {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if !strings.Contains(output, "2,Song Two,Artist Two,Artist Two,,240") {
			t.Errorf("CSV missing track2 row, got: %s", output)
		}
	})

	t.Run("ExportToCSV quotes fields", func(t *testing.T) {
		p := &models.Playlist{Tracks: []models.Track{{Title: "Hello, World", Artist: "A"}}}
		data, err := ExportToCSV(p)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"Hello, World"`) {
			t.Errorf("expected quoted title, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(testPlaylist(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			for _, want := range []string{
				"# Test Playlist",
				"**Description**: A test playlist",
				"**Tracks**: 2",
				"**Duration**: 7:00",
				"## Tracks",
				"1. Artist One - Song One (Album One) [3:00]",
				"2. Artist Two - Song Two [4:00]",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got: %s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not reference a cover")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(testPlaylist(), "test_cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			if !strings.Contains(string(data), "![Cover](test_cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		p := testPlaylist()
		p.Description = ""

		data, err := ExportToText(p)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Test Playlist") {
			t.Errorf("Text missing playlist name")
		}
		if strings.Contains(output, "Description:") {
			t.Errorf("Text should omit an empty description")
		}
		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing track count")
		}
		if !strings.Contains(output, "1. Artist One - Song One") || !strings.Contains(output, "2. Artist Two - Song Two") {
			t.Errorf("Text missing tracks, got: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testPlaylist())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var meta map[string]any
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if meta["name"] != "Test Playlist" || meta["numTracks"] != float64(2) {
			t.Errorf("unexpected metadata %v", meta)
		}
		if _, ok := meta["tracks"]; ok {
			t.Error("metadata should not include tracks")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testPlaylist())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var p models.Playlist
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(p.Tracks) != 2 || p.Tracks[0].Contributors[1] != "Guest" {
			t.Errorf("unexpected tracks %+v", p.Tracks)
		}
	})
}

func TestMissingReports(t *testing.T) {
	outcome := models.NewMigrationOutcome("https://deezer.page.link/xyz", []models.Track{
		{Title: "Lost Song", Artist: "Nobody", Album: "Gone", Duration: 61},
	})

	t.Run("text", func(t *testing.T) {
		out := string(MissingToText(outcome))
		for _, want := range []string{"Playlist: https://deezer.page.link/xyz", "Missing tracks: 1", "1. Nobody - Lost Song"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in %s", want, out)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		out := string(MissingToMarkdown(outcome))
		for _, want := range []string{"# Migration report", "**Missing tracks**: 1", "## Not found", "1. Nobody - Lost Song (Gone) [1:01]"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in %s", want, out)
			}
		}
	})

	t.Run("nothing missing", func(t *testing.T) {
		complete := models.NewMigrationOutcome("https://deezer.page.link/ok", nil)
		if out := string(MissingToMarkdown(complete)); strings.Contains(out, "## Not found") {
			t.Errorf("unexpected section in %s", out)
		}
		if out := string(MissingToText(complete)); !strings.Contains(out, "Missing tracks: 0") {
			t.Errorf("unexpected text %s", out)
		}
	})

	t.Run("WriteMissingReport picks format by extension", func(t *testing.T) {
		dir := t.TempDir()

		md := filepath.Join(dir, "report.md")
		if err := WriteMissingReport(outcome, md); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(th.MustReadFile(t, md), "# Migration report") {
			t.Error("expected markdown report")
		}

		txt := filepath.Join(dir, "report.txt")
		if err := WriteMissingReport(outcome, txt); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(th.MustReadFile(t, txt), "#") {
			t.Error("expected plain text report")
		}
	})

	t.Run("WriteMissingReport bad path", func(t *testing.T) {
		if err := WriteMissingReport(outcome, filepath.Join(t.TempDir(), "missing", "report.txt")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"txt", FormatText, false},
		{"text", FormatText, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Road Trip":          "road-trip",
		"  Chill // Vibes  ": "chill-vibes",
		"Été 2024":           "été-2024",
		"!!!":                "playlist",
		"":                   "playlist",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage(context.Background(), "")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegbytes"))
		}))
		defer srv.Close()

		data, err := DownloadImage(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegbytes" {
			t.Errorf("unexpected data %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(context.Background(), srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestFileExports(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testPlaylist(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "test-playlist_tracks.csv" {
				t.Errorf("Expected 'test-playlist_tracks.csv', got '%s'", result.TracksFile)
			}
			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)

			if !strings.Contains(th.MustReadFile(t, result.TracksFile), "Song One") {
				t.Errorf("CSV missing track data")
			}
			if !strings.Contains(th.MustReadFile(t, result.MetadataFile), "Test Playlist") {
				t.Errorf("Metadata JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testPlaylist(), "custom_export")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "custom_export_tracks.csv" {
				t.Errorf("Expected 'custom_export_tracks.csv', got '%s'", result.TracksFile)
			}
			if result.MetadataFile != "custom_export_metadata.json" {
				t.Errorf("Expected 'custom_export_metadata.json', got '%s'", result.MetadataFile)
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(context.Background(), testPlaylist(), "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "test-playlist" {
				t.Errorf("Expected directory 'test-playlist', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)

			readmePath := filepath.Join(result.Directory, "README.md")
			th.AssertFileExists(t, readmePath)
			if !strings.Contains(th.MustReadFile(t, readmePath), "# Test Playlist") {
				t.Errorf("Markdown missing title")
			}
			if result.CoverImage != "" {
				t.Errorf("no cover expected, got %s", result.CoverImage)
			}
		})

		t.Run("WithCover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpegbytes"))
			}))
			defer srv.Close()

			p := testPlaylist()
			p.Cover = srv.URL + "/cover.jpg"
			dir := filepath.Join(t.TempDir(), "out")

			result, err := WriteMarkdownExport(context.Background(), p, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			th.AssertFileExists(t, result.CoverImage)
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README should reference the cover")
			}
		})

		t.Run("CoverFailureIsNotFatal", func(t *testing.T) {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			p := testPlaylist()
			p.Cover = srv.URL
			result, err := WriteMarkdownExport(context.Background(), p, filepath.Join(t.TempDir(), "out"))
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("expected README only, got %+v", result)
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTextExport(testPlaylist(), "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != "test-playlist_tracks.txt" {
				t.Errorf("Expected 'test-playlist_tracks.txt', got '%s'", path)
			}
			if !strings.Contains(th.MustReadFile(t, path), "Playlist: Test Playlist") {
				t.Errorf("Text missing playlist name")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "custom.txt")
			got, err := WriteTextExport(testPlaylist(), path)
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
			th.AssertFileExists(t, path)
		})
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteJSONExport(testPlaylist(), "")
		if err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		if path != "test-playlist.json" {
			t.Errorf("Expected 'test-playlist.json', got '%s'", path)
		}
		if !strings.Contains(th.MustReadFile(t, path), `"numTracks": 2`) {
			t.Errorf("JSON missing track count")
		}
	})
}
