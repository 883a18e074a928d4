package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grabbot/internal/domain"
)

const (
	defaultMenuLimit   = 5
	defaultSelectDelay = 3 * time.Second

	downloadingNotice = "⬇️ Downloading video... (This may take a moment)"
)

// YouTube is the concrete download orchestrator. It owns the download job
// from metadata lookup through delivery, and guarantees the temp file is
// gone before Handle returns, on every exit path.
type YouTube struct {
	fetcher     domain.Fetcher
	sender      domain.Sender
	dir         string
	menuLimit   int
	selectDelay time.Duration
	logger      *slog.Logger
}

type YouTubeConfig struct {
	Fetcher     domain.Fetcher
	Sender      domain.Sender
	Dir         string // scratch directory for temp files
	MenuLimit   int
	SelectDelay time.Duration
	Logger      *slog.Logger
}

func NewYouTube(cfg YouTubeConfig) *YouTube {
	if cfg.MenuLimit <= 0 {
		cfg.MenuLimit = defaultMenuLimit
	}
	if cfg.SelectDelay <= 0 {
		cfg.SelectDelay = defaultSelectDelay
	}
	return &YouTube{
		fetcher:     cfg.Fetcher,
		sender:      cfg.Sender,
		dir:         cfg.Dir,
		menuLimit:   cfg.MenuLimit,
		selectDelay: cfg.SelectDelay,
		logger:      cfg.Logger,
	}
}

func (y *YouTube) Platform() string { return PlatformYouTube }

func (y *YouTube) Handle(ctx context.Context, sender, url string) error {
	meta, err := y.fetcher.Metadata(ctx, url)
	if err != nil {
		return err
	}

	playable := playableFormats(meta.Formats)
	if len(playable) == 0 {
		return &domain.FetchError{URL: url, Err: errors.New("no formats with both audio and video")}
	}

	if err := y.sendText(ctx, sender, formatMenu(meta.Title, playable, y.menuLimit)); err != nil {
		return &domain.DeliveryError{Recipient: sender, Err: err}
	}

	// Fixed timer in place of interactive selection; when it fires the
	// first offered format is downloaded.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(y.selectDelay):
	}
	format := playable[0]

	if err := y.sendText(ctx, sender, downloadingNotice); err != nil {
		return &domain.DeliveryError{Recipient: sender, Err: err}
	}

	if err := os.MkdirAll(y.dir, 0o755); err != nil {
		return &domain.DownloadError{Path: y.dir, Err: err}
	}
	dest := filepath.Join(y.dir, fmt.Sprintf("video_%d.mp4", time.Now().UnixNano()))

	y.logger.Info("downloading", "url", url, "format", format.ID, "dest", dest)
	if err := y.fetcher.Download(ctx, url, format, dest); err != nil {
		y.removeTemp(dest) // partial file, if any
		return err
	}
	defer y.removeTemp(dest)

	err = y.sender.Send(ctx, domain.OutboundMessage{
		Recipient: sender,
		VideoPath: dest,
		Caption:   "✅ Downloaded: " + meta.Title,
	})
	if err != nil {
		return &domain.DeliveryError{Recipient: sender, Err: err}
	}
	return nil
}

func (y *YouTube) sendText(ctx context.Context, recipient, text string) error {
	return y.sender.Send(ctx, domain.OutboundMessage{Recipient: recipient, Text: text})
}

func (y *YouTube) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		y.logger.Error("temp file cleanup failed", "path", path, "err", err)
	}
}

// playableFormats keeps only formats carrying both audio and video.
func playableFormats(formats []domain.Format) []domain.Format {
	var out []domain.Format
	for _, f := range formats {
		if f.HasAudio && f.HasVideo {
			out = append(out, f)
		}
	}
	return out
}

// formatMenu renders the numbered format listing shown to the sender.
func formatMenu(title string, formats []domain.Format, limit int) string {
	if limit > len(formats) {
		limit = len(formats)
	}

	var sb strings.Builder
	sb.WriteString("📺 *YouTube Video Found:*\n")
	sb.WriteString(title)
	sb.WriteString("\n\n📊 *Available Formats:*\n")
	for i := 0; i < limit; i++ {
		f := formats[i]
		quality := f.Quality
		if quality == "" {
			quality = f.ID
		}
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, quality, FormatBytes(f.Size))
	}
	sb.WriteString("\nDownloading the first format in a few seconds...")
	return sb.String()
}
