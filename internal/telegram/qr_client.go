package telegram

import (
	"errors"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/blockedby/safebot/internal/config"
)

// QRClientBundle contains all components needed for QR authentication
type QRClientBundle struct {
	Client     *telegram.Client
	Dispatcher tg.UpdateDispatcher
	Storage    *session.StorageMemory
}

// NewQRClient creates a raw td/telegram client for QR login. The session
// lands in memory first and is copied to the database on success.
func NewQRClient(cfg *config.Config) (*QRClientBundle, error) {
	if cfg == nil {
		return nil, errors.New("qr client: nil config")
	}

	memStorage := &session.StorageMemory{}
	// NewUpdateDispatcher initializes the handler maps
	dispatcher := tg.NewUpdateDispatcher()

	client := telegram.NewClient(cfg.TGApiID, cfg.TGApiHash, telegram.Options{
		SessionStorage: memStorage,
		UpdateHandler:  &dispatcher,
		Device: telegram.DeviceConfig{
			DeviceModel: "safebot",
		},
	})

	return &QRClientBundle{
		Client:     client,
		Dispatcher: dispatcher,
		Storage:    memStorage,
	}, nil
}
