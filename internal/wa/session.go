package wa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"grabbot/internal/domain"
)

// registration is the identity blob persisted through the credential store.
type registration struct {
	JID      string    `json:"jid"`
	Platform string    `json:"platform"`
	PairedAt time.Time `json:"pairedAt"`
}

// Session adapts a whatsmeow client to the domain session contract. Events
// from the client's callback are translated onto buffered channels; the
// channels stay open for the session's lifetime and are simply abandoned
// after Disconnect.
type Session struct {
	client *whatsmeow.Client
	logger *slog.Logger

	conn  chan domain.ConnectionUpdate
	msgs  chan domain.InboundMessage
	creds chan []byte

	newLogin  atomic.Bool
	handlerID uint32
	discOnce  sync.Once
}

func newSession(client *whatsmeow.Client, logger *slog.Logger) *Session {
	// The controller owns reconnection; the library must not race it with
	// its own reconnect timer after a disconnect.
	client.EnableAutoReconnect = false

	s := &Session{
		client: client,
		logger: logger,
		conn:   make(chan domain.ConnectionUpdate, 8),
		msgs:   make(chan domain.InboundMessage, 64),
		creds:  make(chan []byte, 1),
	}
	s.handlerID = client.AddEventHandler(s.handleEvent)
	return s
}

func (s *Session) Connect(ctx context.Context) error {
	if err := s.client.Connect(); err != nil {
		return &domain.ConnectionError{Err: err}
	}
	return nil
}

func (s *Session) Disconnect() {
	s.discOnce.Do(func() {
		s.client.RemoveEventHandler(s.handlerID)
		s.client.Disconnect()
	})
}

func (s *Session) ConnectionEvents() <-chan domain.ConnectionUpdate { return s.conn }
func (s *Session) Messages() <-chan domain.InboundMessage           { return s.msgs }
func (s *Session) CredentialUpdates() <-chan []byte                 { return s.creds }

func (s *Session) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.QR:
		if len(v.Codes) > 0 {
			s.emitConn(domain.ConnectionUpdate{
				Phase:        domain.PhaseConnecting,
				PairingToken: v.Codes[0],
			})
		}

	case *events.PairSuccess:
		s.newLogin.Store(true)
		blob, err := json.Marshal(registration{
			JID:      v.ID.String(),
			Platform: v.Platform,
			PairedAt: time.Now().UTC(),
		})
		if err != nil {
			s.logger.Error("registration blob encode failed", "err", err)
			return
		}
		select {
		case s.creds <- blob:
		default:
			s.logger.Warn("credential channel full, dropping registration blob")
		}

	case *events.Connected:
		s.emitConn(domain.ConnectionUpdate{
			Phase:      domain.PhaseOpen,
			IsNewLogin: s.newLogin.Swap(false),
		})

	case *events.LoggedOut:
		s.emitConn(domain.ConnectionUpdate{
			Phase: domain.PhaseClosed,
			Cause: &domain.DisconnectCause{
				Code:   domain.CodeLoggedOut,
				Reason: fmt.Sprintf("%v", v.Reason),
			},
		})

	case *events.Disconnected:
		s.emitConn(domain.ConnectionUpdate{
			Phase: domain.PhaseClosed,
			Cause: &domain.DisconnectCause{Reason: "connection lost"},
		})

	case *events.Message:
		s.emitMessage(v)
	}
}

func (s *Session) emitConn(u domain.ConnectionUpdate) {
	select {
	case s.conn <- u:
	default:
		s.logger.Warn("connection event channel full, dropping update", "phase", u.Phase)
	}
}

func (s *Session) emitMessage(v *events.Message) {
	msg := v.Message
	env := domain.InboundMessage{
		Sender:     v.Info.Chat.String(),
		FromMe:     v.Info.IsFromMe,
		HasMessage: msg != nil,
		Timestamp:  v.Info.Timestamp,
	}
	if msg != nil {
		env.Conversation = msg.GetConversation()
		env.ExtendedText = msg.GetExtendedTextMessage().GetText()
		env.VideoCaption = msg.GetVideoMessage().GetCaption()
	}

	select {
	case s.msgs <- env:
	default:
		s.logger.Warn("inbound channel full, dropping message", "sender", env.Sender)
	}
}

// Send delivers a text or video message. Video files are read fully into
// memory for the encrypted upload, matching whatsmeow's Upload contract.
func (s *Session) Send(ctx context.Context, msg domain.OutboundMessage) error {
	jid, err := types.ParseJID(msg.Recipient)
	if err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	if msg.VideoPath != "" {
		return s.sendVideo(ctx, jid, msg)
	}

	_, err = s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(msg.Text),
	})
	if err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}
	return nil
}

func (s *Session) sendVideo(ctx context.Context, jid types.JID, msg domain.OutboundMessage) error {
	data, err := os.ReadFile(msg.VideoPath)
	if err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	up, err := s.client.Upload(ctx, data, whatsmeow.MediaVideo)
	if err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}

	video := &waE2E.VideoMessage{
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
		Mimetype:      proto.String("video/mp4"),
		Caption:       proto.String(msg.Caption),
	}
	_, err = s.client.SendMessage(ctx, jid, &waE2E.Message{VideoMessage: video})
	if err != nil {
		return &domain.DeliveryError{Recipient: msg.Recipient, Err: err}
	}
	return nil
}
