package domain

import "time"

// InboundMessage is one raw message envelope received from the messaging
// session, normalized just enough for dispatch: sender, self-echo flag and
// the candidate text bodies. It lives for exactly one dispatch cycle.
type InboundMessage struct {
	Sender       string // chat JID replies go back to
	FromMe       bool
	HasMessage   bool // false for envelopes with no message payload (receipts, reactions)
	Conversation string
	ExtendedText string
	VideoCaption string
	Timestamp    time.Time
}

// DisplayText returns the first non-empty text body: plain conversation text,
// extended-text body, then video caption.
func (m InboundMessage) DisplayText() string {
	if m.Conversation != "" {
		return m.Conversation
	}
	if m.ExtendedText != "" {
		return m.ExtendedText
	}
	return m.VideoCaption
}

// OutboundMessage is a reply payload: plain text, or a video attachment
// (VideoPath set) with an optional caption.
type OutboundMessage struct {
	Recipient string
	Text      string
	VideoPath string
	Caption   string
}
