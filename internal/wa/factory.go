package wa

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	"grabbot/internal/domain"
)

// Factory builds WhatsApp sessions backed by whatsmeow's own SQLite device
// store. The store holds the noise keys and signal state; the opaque
// credential blob handed to New only records the paired identity.
//
// The device store container is opened once and shared by every session the
// factory builds, so reconnect cycles do not accumulate database handles.
type Factory struct {
	authDBPath string
	logger     *slog.Logger

	mu        sync.Mutex
	container *sqlstore.Container
}

func NewFactory(authDBPath string, logger *slog.Logger) *Factory {
	return &Factory{authDBPath: authDBPath, logger: logger}
}

func (f *Factory) New(ctx context.Context, creds []byte) (domain.Session, error) {
	container, err := f.deviceStore(ctx)
	if err != nil {
		return nil, err
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("client", "WARN", false))
	if len(creds) > 0 && device.ID == nil {
		// The registration blob survived but the device store did not.
		// Pairing starts over; the stale blob is replaced on PairSuccess.
		f.logger.Warn("registration blob present but device store is empty, re-pairing")
	}
	return newSession(client, f.logger), nil
}

// deviceStore opens the shared sqlstore container on first use.
func (f *Factory) deviceStore(ctx context.Context) (*sqlstore.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.container != nil {
		return f.container, nil
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", f.authDBPath)
	container, err := sqlstore.New(ctx, "sqlite3", dsn, waLog.Stdout("sqlstore", "WARN", false))
	if err != nil {
		return nil, fmt.Errorf("open device store: %w", err)
	}
	f.container = container
	return container, nil
}
