package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"grabbot/internal/domain"
	"grabbot/internal/download"
)

const (
	processingAck = "⏳ Processing your request...\nDetecting platform and fetching info..."

	unsupportedReply = "❌ Platform not supported yet. Supported: YouTube, Instagram, TikTok, Twitter"

	failureReply = "❌ Error downloading video. Please try another link."

	helpText = "🤖 *Social Media Downloader Bot*\n\n" +
		"*Commands:*\n" +
		"• Send any YouTube/Instagram/TikTok link\n" +
		"• !help - Show this menu\n" +
		"• !formats - Show available formats\n\n" +
		"*Supported Platforms:*\n" +
		"• YouTube\n" +
		"• Instagram\n" +
		"• TikTok\n" +
		"• Twitter/X\n" +
		"• Facebook\n\n" +
		"*Note:* Videos will be sent in MP4 format"
)

// Dispatcher consumes inbound messages from the bus and routes each one:
// help commands get the command listing, detected media URLs go to the
// platform handler, everything else is ignored.
type Dispatcher struct {
	bus      domain.MessageBus
	sender   domain.Sender
	handlers map[string]download.Handler
	logger   *slog.Logger
}

type DispatcherConfig struct {
	Bus      domain.MessageBus
	Sender   domain.Sender
	Handlers []download.Handler
	Logger   *slog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	handlers := make(map[string]download.Handler, len(cfg.Handlers))
	for _, h := range cfg.Handlers {
		handlers[h.Platform()] = h
	}
	return &Dispatcher{
		bus:      cfg.Bus,
		sender:   cfg.Sender,
		handlers: handlers,
		logger:   cfg.Logger,
	}
}

// Run consumes the bus until the context ends or the bus closes. Each
// message is handled on its own goroutine so a slow download never blocks
// the next message.
func (d *Dispatcher) Run(ctx context.Context) error {
	msgs := d.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			go d.Handle(ctx, msg)
		}
	}
}

// Handle routes one inbound message. Exported for tests and for callers
// that already own their receive loop.
func (d *Dispatcher) Handle(ctx context.Context, msg domain.InboundMessage) {
	if !msg.HasMessage || msg.FromMe {
		return
	}

	text := msg.DisplayText()
	if text == "" {
		return
	}

	if isHelpCommand(text) {
		if err := d.reply(ctx, msg.Sender, helpText); err != nil {
			d.logger.Error("help reply failed", "sender", msg.Sender, "err", err)
		}
		return
	}

	url := ExtractURL(text)
	if url == "" {
		return
	}

	d.logger.Info("media url detected", "sender", msg.Sender, "url", url)
	if err := d.reply(ctx, msg.Sender, processingAck); err != nil {
		d.logger.Error("processing ack failed", "sender", msg.Sender, "err", err)
		if err := d.reply(ctx, msg.Sender, failureReply); err != nil {
			d.logger.Error("failure reply failed", "sender", msg.Sender, "err", err)
		}
		return
	}

	platform := Classify(url)
	handler, ok := d.handlers[platform]
	if !ok {
		if err := d.reply(ctx, msg.Sender, unsupportedReply); err != nil {
			d.logger.Error("unsupported reply failed", "sender", msg.Sender, "err", err)
		}
		return
	}

	if err := handler.Handle(ctx, msg.Sender, url); err != nil {
		d.logger.Error("download job failed", "platform", platform, "url", url, "err", err)
		if err := d.reply(ctx, msg.Sender, failureReply); err != nil {
			d.logger.Error("failure reply failed", "sender", msg.Sender, "err", err)
		}
	}
}

func (d *Dispatcher) reply(ctx context.Context, recipient, text string) error {
	return d.sender.Send(ctx, domain.OutboundMessage{Recipient: recipient, Text: text})
}

// isHelpCommand matches the whole text against the help commands, case
// insensitively. No trimming: a leading space is not a command.
func isHelpCommand(text string) bool {
	return strings.EqualFold(text, "!help") || strings.EqualFold(text, "/help")
}
