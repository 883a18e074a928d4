package domain

import "context"

// Format is one offered quality/size variant of a piece of media.
// Read-only, sourced from a Fetcher; never persisted beyond the job.
type Format struct {
	ID       string
	Quality  string
	Size     int64 // approximate bytes; 0 when the source does not report one
	HasAudio bool
	HasVideo bool
}

// Metadata is the resolved description of a media URL.
type Metadata struct {
	Title   string
	Formats []Format
}

// Fetcher resolves a URL to downloadable media and streams the bytes.
// One implementation exists per supported platform.
type Fetcher interface {
	Platform() string
	Metadata(ctx context.Context, url string) (*Metadata, error)
	Download(ctx context.Context, url string, format Format, dest string) error
}
