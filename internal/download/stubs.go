package download

import (
	"context"

	"grabbot/internal/domain"
)

// Stub replies with a fixed notice and performs no network or filesystem
// work. It keeps the routing contract identical to the real handler so a
// concrete fetcher can slot in later without touching the dispatcher.
type Stub struct {
	platform string
	reply    string
	sender   domain.Sender
}

func NewInstagram(sender domain.Sender) *Stub {
	return &Stub{
		platform: PlatformInstagram,
		reply:    "📸 Instagram download coming soon!\nFor now, try YouTube links.",
		sender:   sender,
	}
}

func NewTikTok(sender domain.Sender) *Stub {
	return &Stub{
		platform: PlatformTikTok,
		reply:    "🎵 TikTok download coming soon!\nFor now, try YouTube links.",
		sender:   sender,
	}
}

func NewTwitter(sender domain.Sender) *Stub {
	return &Stub{
		platform: PlatformTwitter,
		reply:    "🐦 Twitter download coming soon!\nFor now, try YouTube links.",
		sender:   sender,
	}
}

func (s *Stub) Platform() string { return s.platform }

func (s *Stub) Handle(ctx context.Context, sender, _ string) error {
	return s.sender.Send(ctx, domain.OutboundMessage{Recipient: sender, Text: s.reply})
}
