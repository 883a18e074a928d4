package download

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grabbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type fakeFetcher struct {
	meta        *domain.Metadata
	metaErr     error
	downloadErr error
	leavePartial bool

	downloadedURL    string
	downloadedFormat domain.Format
}

func (f *fakeFetcher) Platform() string { return PlatformYouTube }

func (f *fakeFetcher) Metadata(_ context.Context, _ string) (*domain.Metadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeFetcher) Download(_ context.Context, url string, format domain.Format, dest string) error {
	f.downloadedURL = url
	f.downloadedFormat = format
	if f.downloadErr != nil {
		if f.leavePartial {
			os.WriteFile(dest, []byte("partial"), 0o644)
		}
		return f.downloadErr
	}
	return os.WriteFile(dest, []byte("video-bytes"), 0o644)
}

type recordingSender struct {
	sent       []domain.OutboundMessage
	failOnCall int // 1-based index of the call that errors, 0 disables
	// set when Send saw a VideoPath pointing at an existing file
	videoExisted bool
}

func (s *recordingSender) Send(_ context.Context, msg domain.OutboundMessage) error {
	s.sent = append(s.sent, msg)
	if msg.VideoPath != "" {
		if _, err := os.Stat(msg.VideoPath); err == nil {
			s.videoExisted = true
		}
	}
	if s.failOnCall > 0 && len(s.sent) == s.failOnCall {
		return errors.New("send failed")
	}
	return nil
}

func twoFormats() *domain.Metadata {
	return &domain.Metadata{
		Title: "Test Clip",
		Formats: []domain.Format{
			{ID: "audio", Quality: "audio only", Size: 100, HasAudio: true, HasVideo: false},
			{ID: "18", Quality: "360p", Size: 1536, HasAudio: true, HasVideo: true},
			{ID: "22", Quality: "720p", Size: 1073741824, HasAudio: true, HasVideo: true},
		},
	}
}

func newTestYouTube(t *testing.T, fetcher *fakeFetcher, sender *recordingSender) (*YouTube, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "tmp")
	return NewYouTube(YouTubeConfig{
		Fetcher:     fetcher,
		Sender:      sender,
		Dir:         dir,
		SelectDelay: time.Millisecond,
		Logger:      testLogger(),
	}), dir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestYouTube_HandleSuccess(t *testing.T) {
	fetcher := &fakeFetcher{meta: twoFormats()}
	sender := &recordingSender{}
	y, dir := newTestYouTube(t, fetcher, sender)

	err := y.Handle(context.Background(), "111@s.whatsapp.net", "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 outbound messages, got %d", len(sender.sent))
	}

	menu := sender.sent[0].Text
	if !strings.Contains(menu, "Test Clip") {
		t.Errorf("menu missing title: %q", menu)
	}
	if !strings.Contains(menu, "1. 360p - 1.5 KB") {
		t.Errorf("menu missing first format line: %q", menu)
	}
	if !strings.Contains(menu, "2. 720p - 1 GB") {
		t.Errorf("menu missing second format line: %q", menu)
	}
	if strings.Contains(menu, "audio only") {
		t.Errorf("menu should exclude audio-only formats: %q", menu)
	}

	if sender.sent[1].Text != downloadingNotice {
		t.Errorf("expected downloading notice, got %q", sender.sent[1].Text)
	}

	final := sender.sent[2]
	if final.VideoPath == "" {
		t.Fatal("expected a video message last")
	}
	if final.Caption != "✅ Downloaded: Test Clip" {
		t.Errorf("unexpected caption %q", final.Caption)
	}
	if !sender.videoExisted {
		t.Error("video file should exist at send time")
	}
	if fetcher.downloadedFormat.ID != "18" {
		t.Errorf("expected first playable format selected, got %q", fetcher.downloadedFormat.ID)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("expected temp dir emptied after success, found %d entries", n)
	}
}

func TestYouTube_HandleMetadataError(t *testing.T) {
	fetcher := &fakeFetcher{metaErr: &domain.FetchError{URL: "u", Err: errors.New("boom")}}
	sender := &recordingSender{}
	y, dir := newTestYouTube(t, fetcher, sender)

	err := y.Handle(context.Background(), "111@s.whatsapp.net", "u")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no messages on metadata failure, got %d", len(sender.sent))
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("expected no temp files, found %d", n)
	}
}

func TestYouTube_HandleNoPlayableFormats(t *testing.T) {
	fetcher := &fakeFetcher{meta: &domain.Metadata{
		Title: "Audio Only",
		Formats: []domain.Format{
			{ID: "a1", HasAudio: true, HasVideo: false},
			{ID: "v1", HasAudio: false, HasVideo: true},
		},
	}}
	sender := &recordingSender{}
	y, _ := newTestYouTube(t, fetcher, sender)

	err := y.Handle(context.Background(), "111@s.whatsapp.net", "u")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for unplayable media, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no messages, got %d", len(sender.sent))
	}
}

func TestYouTube_HandleDownloadErrorCleansPartial(t *testing.T) {
	fetcher := &fakeFetcher{
		meta:         twoFormats(),
		downloadErr:  &domain.DownloadError{Path: "x", Err: errors.New("disk full")},
		leavePartial: true,
	}
	sender := &recordingSender{}
	y, dir := newTestYouTube(t, fetcher, sender)

	err := y.Handle(context.Background(), "111@s.whatsapp.net", "u")
	var dlErr *domain.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("expected partial file removed, found %d entries", n)
	}
	if len(sender.sent) != 2 {
		t.Errorf("expected menu and downloading notice only, got %d messages", len(sender.sent))
	}
}

func TestYouTube_HandleDeliveryErrorCleansTemp(t *testing.T) {
	fetcher := &fakeFetcher{meta: twoFormats()}
	sender := &recordingSender{failOnCall: 3} // the video send
	y, dir := newTestYouTube(t, fetcher, sender)

	err := y.Handle(context.Background(), "111@s.whatsapp.net", "u")
	var delErr *domain.DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("expected temp file removed after failed delivery, found %d entries", n)
	}
}

func TestYouTube_HandleCancelledDuringSelectDelay(t *testing.T) {
	fetcher := &fakeFetcher{meta: twoFormats()}
	sender := &recordingSender{}
	dir := filepath.Join(t.TempDir(), "tmp")
	y := NewYouTube(YouTubeConfig{
		Fetcher:     fetcher,
		Sender:      sender,
		Dir:         dir,
		SelectDelay: time.Hour,
		Logger:      testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- y.Handle(ctx, "111@s.whatsapp.net", "u") }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handle did not return after cancellation")
	}
	if fetcher.downloadedURL != "" {
		t.Error("download should not start after cancellation")
	}
}

func TestFormatMenu_LimitsEntries(t *testing.T) {
	formats := make([]domain.Format, 8)
	for i := range formats {
		formats[i] = domain.Format{ID: "f", Quality: "q", Size: 1024, HasAudio: true, HasVideo: true}
	}
	menu := formatMenu("T", formats, 5)
	if strings.Contains(menu, "6.") {
		t.Errorf("menu should cap at 5 entries: %q", menu)
	}
	if !strings.Contains(menu, "5.") {
		t.Errorf("menu should list 5 entries: %q", menu)
	}
}
