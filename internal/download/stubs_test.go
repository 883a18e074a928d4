package download

import (
	"context"
	"testing"

	"grabbot/internal/domain"
)

func TestStubs_ReplyWithNotice(t *testing.T) {
	cases := []struct {
		platform string
		build    func(domain.Sender) *Stub
		want     string
	}{
		{PlatformInstagram, NewInstagram, "📸 Instagram download coming soon!\nFor now, try YouTube links."},
		{PlatformTikTok, NewTikTok, "🎵 TikTok download coming soon!\nFor now, try YouTube links."},
		{PlatformTwitter, NewTwitter, "🐦 Twitter download coming soon!\nFor now, try YouTube links."},
	}

	for _, tc := range cases {
		t.Run(tc.platform, func(t *testing.T) {
			sender := &recordingSender{}
			stub := tc.build(sender)

			if got := stub.Platform(); got != tc.platform {
				t.Errorf("Platform() = %q, want %q", got, tc.platform)
			}
			if err := stub.Handle(context.Background(), "111@s.whatsapp.net", "https://example.com"); err != nil {
				t.Fatalf("handle: %v", err)
			}
			if len(sender.sent) != 1 {
				t.Fatalf("expected exactly one reply, got %d", len(sender.sent))
			}
			if sender.sent[0].Text != tc.want {
				t.Errorf("reply = %q, want %q", sender.sent[0].Text, tc.want)
			}
			if sender.sent[0].Recipient != "111@s.whatsapp.net" {
				t.Errorf("reply addressed to %q", sender.sent[0].Recipient)
			}
		})
	}
}
