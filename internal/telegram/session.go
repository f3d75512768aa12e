package telegram

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/celestix/gotgproto/storage"
	"github.com/gotd/td/session"
	"gorm.io/gorm"
)

// sessionTable is where the gotgproto SqlSession keeps the auth state.
const sessionTable = "sessions"

// ErrNilSession is returned when there is no session data to store.
var ErrNilSession = errors.New("session data is nil")

// loaderEnvelope is the layout session.Loader reads back.
type loaderEnvelope struct {
	Version int
	Data    *session.Data
}

// ConvertToGotgprotoSession wraps gotd session.Data into the row gotgproto
// stores. The payload is the envelope gotd's session.Loader expects.
func ConvertToGotgprotoSession(data *session.Data) (*storage.Session, error) {
	if data == nil {
		return nil, ErrNilSession
	}

	raw, err := json.Marshal(loaderEnvelope{Version: 1, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal session data: %w", err)
	}

	return &storage.Session{
		Version: storage.LatestVersion,
		Data:    raw,
	}, nil
}

// HasSession reports whether a stored session exists.
func HasSession(db *gorm.DB) (bool, error) {
	if !db.Migrator().HasTable(sessionTable) {
		return false, nil
	}
	var count int64
	if err := db.Table(sessionTable).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	return count > 0, nil
}

// SaveSession upserts the session row. Version is the primary key, so an
// existing login is replaced.
func SaveSession(db *gorm.DB, data *session.Data) error {
	sess, err := ConvertToGotgprotoSession(data)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&storage.Session{}); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if err := db.Save(sess).Error; err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
