package fetch

import "testing"

func TestParseInfo(t *testing.T) {
	raw := []byte(`{
		"title": "Sample Video",
		"formats": [
			{"format_id": "251", "format_note": "audio only", "resolution": "audio only", "filesize": 4000000, "vcodec": "none", "acodec": "opus"},
			{"format_id": "18", "format_note": "360p", "resolution": "640x360", "filesize": 10485760, "vcodec": "avc1", "acodec": "mp4a"},
			{"format_id": "22", "resolution": "1280x720", "filesize_approx": 52428800, "vcodec": "avc1", "acodec": "mp4a"},
			{"format_id": "313", "format_note": "2160p", "vcodec": "vp9", "acodec": "none"}
		]
	}`)

	meta, err := parseInfo(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Sample Video" {
		t.Errorf("title = %q", meta.Title)
	}
	if len(meta.Formats) != 4 {
		t.Fatalf("expected 4 formats, got %d", len(meta.Formats))
	}

	audio := meta.Formats[0]
	if audio.HasVideo || !audio.HasAudio {
		t.Errorf("format 251 should be audio-only, got %+v", audio)
	}

	muxed := meta.Formats[1]
	if !muxed.HasAudio || !muxed.HasVideo {
		t.Errorf("format 18 should carry both streams, got %+v", muxed)
	}
	if muxed.Quality != "360p" {
		t.Errorf("format_note should win as quality, got %q", muxed.Quality)
	}
	if muxed.Size != 10485760 {
		t.Errorf("size = %d", muxed.Size)
	}

	approx := meta.Formats[2]
	if approx.Quality != "1280x720" {
		t.Errorf("resolution should back-fill missing format_note, got %q", approx.Quality)
	}
	if approx.Size != 52428800 {
		t.Errorf("filesize_approx should back-fill missing filesize, got %d", approx.Size)
	}

	videoOnly := meta.Formats[3]
	if videoOnly.HasAudio || !videoOnly.HasVideo {
		t.Errorf("format 313 should be video-only, got %+v", videoOnly)
	}
	if videoOnly.Size != 0 {
		t.Errorf("missing sizes should stay zero, got %d", videoOnly.Size)
	}
}

func TestParseInfo_BadJSON(t *testing.T) {
	if _, err := parseInfo([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed output")
	}
}
