package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"

	"grabbot/internal/domain"
	"grabbot/internal/download"
)

// YouTube resolves and downloads YouTube media through yt-dlp.
type YouTube struct {
	logger *slog.Logger
}

func NewYouTube(logger *slog.Logger) *YouTube {
	return &YouTube{logger: logger}
}

func (y *YouTube) Platform() string { return download.PlatformYouTube }

// Metadata asks yt-dlp for the full info JSON without downloading anything.
func (y *YouTube) Metadata(ctx context.Context, url string) (*domain.Metadata, error) {
	res, err := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}

	meta, err := parseInfo([]byte(res.Stdout))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	return meta, nil
}

// Download fetches the chosen format to dest, logging progress once a second.
func (y *YouTube) Download(ctx context.Context, url string, format domain.Format, dest string) error {
	dl := ytdlp.New().
		Format(format.ID).
		Output(dest).
		ForceOverwrites()

	dl.ProgressFunc(time.Second, func(update ytdlp.ProgressUpdate) {
		y.logger.Info("download progress",
			"url", url,
			"downloaded", humanize.Bytes(uint64(update.DownloadedBytes)),
			"total", humanize.Bytes(uint64(update.TotalBytes)))
	})

	if _, err := dl.Run(ctx, url); err != nil {
		return &domain.DownloadError{Path: dest, Err: err}
	}
	return nil
}

// infoDict mirrors the slice of yt-dlp's --dump-single-json output we read.
type infoDict struct {
	Title   string       `json:"title"`
	Formats []infoFormat `json:"formats"`
}

type infoFormat struct {
	FormatID       string `json:"format_id"`
	FormatNote     string `json:"format_note"`
	Resolution     string `json:"resolution"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
	VCodec         string `json:"vcodec"`
	ACodec         string `json:"acodec"`
}

func parseInfo(raw []byte) (*domain.Metadata, error) {
	var info infoDict
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	meta := &domain.Metadata{Title: info.Title}
	for _, f := range info.Formats {
		quality := f.FormatNote
		if quality == "" {
			quality = f.Resolution
		}
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		meta.Formats = append(meta.Formats, domain.Format{
			ID:       f.FormatID,
			Quality:  quality,
			Size:     size,
			HasAudio: hasCodec(f.ACodec),
			HasVideo: hasCodec(f.VCodec),
		})
	}
	return meta, nil
}

// hasCodec reports whether yt-dlp claims a real codec; the sentinel "none"
// marks an absent stream.
func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}
