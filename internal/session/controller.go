package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"grabbot/internal/domain"

	"github.com/mdp/qrterminal/v3"
)

// Controller owns the connection state machine: it keeps exactly one live
// messaging session per process, drives pairing-code generation and
// reconnects after transient disconnects.
type Controller struct {
	factory      domain.SessionFactory
	creds        domain.CredentialStore
	bus          domain.MessageBus
	policy       RetryPolicy
	logger       *slog.Logger
	pairCodeFile string
	qrOut        io.Writer

	mu       sync.RWMutex
	phase    domain.Phase
	pairCode string
	sess     domain.Session
}

// ControllerConfig holds the controller's collaborators.
type ControllerConfig struct {
	Factory      domain.SessionFactory
	Creds        domain.CredentialStore
	Bus          domain.MessageBus
	Policy       RetryPolicy // defaults to ImmediateRetry
	PairCodeFile string
	QROut        io.Writer // defaults to os.Stdout
	Logger       *slog.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Policy == nil {
		cfg.Policy = ImmediateRetry{}
	}
	if cfg.QROut == nil {
		cfg.QROut = os.Stdout
	}
	return &Controller{
		factory:      cfg.Factory,
		creds:        cfg.Creds,
		bus:          cfg.Bus,
		policy:       cfg.Policy,
		logger:       cfg.Logger,
		pairCodeFile: cfg.PairCodeFile,
		qrOut:        cfg.QROut,
		phase:        domain.PhaseClosed,
	}
}

// Run drives the session lifecycle until the context is cancelled or the
// session is terminally de-authorized. A credential load failure at startup
// is fatal: the process must not start unauthenticated by accident.
func (c *Controller) Run(ctx context.Context) error {
	blob, err := c.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	attempt := 0
	for {
		opened, err := c.runOnce(ctx, blob)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			// The streak of failed reconnects ended; the retry budget
			// applies per disconnect streak, not per process.
			attempt = 0
		}

		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			c.logger.Error("session terminally closed, not reconnecting", "reason", authErr.Reason)
			return err
		}

		attempt++
		delay, retry := c.policy.Next(attempt)
		if !retry {
			return err
		}
		c.logger.Info("connection closed, reconnecting...", "attempt", attempt, "err", err)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		// Pick up credentials persisted during the previous cycle.
		if fresh, err := c.creds.Load(ctx); err != nil {
			c.logger.Warn("credential reload failed, reusing previous blob", "err", err)
		} else {
			blob = fresh
		}
	}
}

// runOnce builds one session and consumes its events until it closes. It
// reports whether the session reached the open phase during the cycle.
func (c *Controller) runOnce(ctx context.Context, blob []byte) (bool, error) {
	opened := false

	c.setPhase(domain.PhaseConnecting)

	sess, err := c.factory.New(ctx, blob)
	if err != nil {
		return opened, &domain.ConnectionError{Err: err}
	}
	defer func() {
		c.mu.Lock()
		c.sess = nil
		c.mu.Unlock()
		sess.Disconnect()
	}()

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	if err := sess.Connect(ctx); err != nil {
		return opened, &domain.ConnectionError{Err: err}
	}

	conn := sess.ConnectionEvents()
	msgs := sess.Messages()
	creds := sess.CredentialUpdates()

	for {
		select {
		case <-ctx.Done():
			return opened, ctx.Err()

		case blob, ok := <-creds:
			if !ok {
				creds = nil
				continue
			}
			// Forwarded verbatim; a failed save is logged, never fatal.
			if err := c.creds.Save(ctx, blob); err != nil {
				c.logger.Error("credential save failed", "err", err)
			}

		case m, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			c.bus.Publish(m)

		case u, ok := <-conn:
			if !ok {
				return opened, &domain.ConnectionError{Err: errors.New("connection event stream ended")}
			}
			if u.Phase == domain.PhaseOpen {
				opened = true
			}
			if done, err := c.handleUpdate(u); done {
				return opened, err
			}
		}
	}
}

// handleUpdate applies one connection-state transition. It returns done=true
// when the session is closed and the cycle must end.
func (c *Controller) handleUpdate(u domain.ConnectionUpdate) (bool, error) {
	if u.PairingToken != "" {
		c.renderPairingToken(u.PairingToken)
	}

	switch u.Phase {
	case domain.PhaseConnecting:
		c.setPhase(domain.PhaseConnecting)

	case domain.PhaseOpen:
		c.setPhase(domain.PhaseOpen)
		c.logger.Info("messaging session connected")
		if u.IsNewLogin {
			if err := c.generatePairCode(); err != nil {
				c.logger.Error("pair code generation failed", "err", err)
			}
		}

	case domain.PhaseClosed:
		c.setPhase(domain.PhaseClosed)
		if u.Cause != nil && u.Cause.Code == domain.CodeLoggedOut {
			return true, &domain.AuthError{Reason: u.Cause.Reason}
		}
		reason := "connection closed"
		if u.Cause != nil && u.Cause.Reason != "" {
			reason = u.Cause.Reason
		}
		return true, &domain.ConnectionError{Err: errors.New(reason)}
	}

	return false, nil
}

// Send delivers a message through the current session. It fails when the
// session is not open; callers treat that as any other delivery failure.
func (c *Controller) Send(ctx context.Context, msg domain.OutboundMessage) error {
	c.mu.RLock()
	sess, phase := c.sess, c.phase
	c.mu.RUnlock()

	if sess == nil || phase != domain.PhaseOpen {
		return &domain.ConnectionError{Err: errors.New("session not open")}
	}
	return sess.Send(ctx, msg)
}

// Phase returns the current connection phase.
func (c *Controller) Phase() domain.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// PairCode returns the current pairing code, if one has been generated.
func (c *Controller) PairCode() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pairCode, c.pairCode != ""
}

func (c *Controller) setPhase(p domain.Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// renderPairingToken draws the scannable token for the manual pairing path.
func (c *Controller) renderPairingToken(token string) {
	c.logger.Info("pairing token received, scan to link device")
	qrterminal.GenerateHalfBlock(token, qrterminal.L, c.qrOut)
}
