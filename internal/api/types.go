package api

import (
	"fmt"
	"time"

	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/models"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok" description:"Health status"`
	Version string `json:"version" example:"dev" description:"Application version"`
	Time    string `json:"time" description:"Server time, RFC 3339"`
}

// AuthStatusResponse contains Telegram authentication status.
type AuthStatusResponse struct {
	Status       string `json:"status" description:"Auth status: INITIALIZING, READY, UNAUTHORIZED, ERROR, DISCONNECTED"`
	IsReady      bool   `json:"is_ready" description:"Whether the client is ready to process messages"`
	QRInProgress bool   `json:"qr_in_progress" description:"Whether QR login flow is active"`
}

// EntityJSON is an entity on the wire, tagged by its Bot API type name.
type EntityJSON struct {
	Type       string       `json:"type" example:"url" description:"Entity type, Bot API name"`
	Offset     int          `json:"offset" description:"Start in UTF-16 code units"`
	Length     int          `json:"length" description:"Length in UTF-16 code units"`
	URL        string       `json:"url,omitempty" description:"Target of a text_link"`
	User       *entity.User `json:"user,omitempty" description:"Target of a text_mention"`
	Language   string       `json:"language,omitempty" description:"Language of a pre block"`
	Collapsed  bool         `json:"collapsed,omitempty" description:"Blockquote starts collapsed"`
	DocumentID int64        `json:"document_id,omitempty" description:"Custom emoji document id"`
}

// ScanRequest is a message to scan.
type ScanRequest struct {
	Text        string       `json:"text" description:"Message text"`
	Entities    []EntityJSON `json:"entities" description:"Message entities"`
	Sender      *entity.User `json:"sender,omitempty" description:"Message sender"`
	ForwardFrom *entity.User `json:"forward_from,omitempty" description:"Original author of a forward"`
	IsReply     bool         `json:"is_reply" description:"Whether the message replies to another one"`
	ButtonURLs  []string     `json:"button_urls,omitempty" description:"Inline button URLs"`
	Deep        bool         `json:"deep" description:"Use the deep scan tier"`
}

// ScanResponse is the scan verdict and the sanitized message.
type ScanResponse struct {
	ShouldScan bool         `json:"should_scan" description:"Whether the message is attributed to a bot and would be scanned live"`
	Found      bool         `json:"found" description:"Whether unsafe content was found"`
	CanEcho    bool         `json:"can_echo" description:"Whether a sanitized copy would be reposted in echo mode"`
	Text       string       `json:"text" description:"Sanitized text"`
	Entities   []EntityJSON `json:"entities" description:"Sanitized entities"`
}

// ChatResponse represents chat settings in API responses.
type ChatResponse struct {
	TelegramID int64      `json:"t_id" description:"Telegram chat id"`
	SilentMode bool       `json:"silent_mode" description:"Deletion notices are not sent"`
	EchoMode   bool       `json:"echo_mode" description:"Sanitized copies are reposted"`
	CreatedAt  *time.Time `json:"created_at,omitempty" description:"Registration time, absent for unknown chats"`
}

// ChatUpdateRequest is a partial settings update.
type ChatUpdateRequest struct {
	SilentMode *bool `json:"silent_mode,omitempty" description:"New silent mode"`
	EchoMode   *bool `json:"echo_mode,omitempty" description:"New echo mode"`
}

// ChatFromModel converts a settings row.
func ChatFromModel(c *models.Chat) ChatResponse {
	resp := ChatResponse{
		TelegramID: c.TelegramID,
		SilentMode: c.SilentMode,
		EchoMode:   c.EchoMode,
	}
	if !c.CreatedAt.IsZero() {
		created := c.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

// ToEntities converts wire entities. Unknown type names are rejected.
func ToEntities(in []EntityJSON) ([]entity.Entity, error) {
	out := make([]entity.Entity, 0, len(in))
	for i, e := range in {
		kind := entity.ParseKind(e.Type)
		if kind == entity.KindUnknown {
			return nil, fmt.Errorf("entity %d: unknown type %q", i, e.Type)
		}
		if e.Offset < 0 || e.Length < 0 {
			return nil, fmt.Errorf("entity %d: negative offset or length", i)
		}
		out = append(out, entity.Entity{
			Kind:       kind,
			Offset:     e.Offset,
			Length:     e.Length,
			URL:        e.URL,
			User:       e.User,
			Language:   e.Language,
			Collapsed:  e.Collapsed,
			DocumentID: e.DocumentID,
		})
	}
	return out, nil
}

// FromEntities converts entities for a response.
func FromEntities(in []entity.Entity) []EntityJSON {
	out := make([]EntityJSON, 0, len(in))
	for _, e := range in {
		out = append(out, EntityJSON{
			Type:       e.Kind.String(),
			Offset:     e.Offset,
			Length:     e.Length,
			URL:        e.URL,
			User:       e.User,
			Language:   e.Language,
			Collapsed:  e.Collapsed,
			DocumentID: e.DocumentID,
		})
	}
	return out
}
