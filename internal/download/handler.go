package download

import "context"

// Platform tags, in classification priority order.
const (
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformTwitter   = "twitter"
)

// Handler coordinates one download job for a single platform: resolve
// metadata, stream the media to scratch storage, deliver it back to the
// sender and clean up. Stub platforms keep the same signature.
type Handler interface {
	Platform() string
	Handle(ctx context.Context, sender, url string) error
}
