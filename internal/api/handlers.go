// Package api provides the HTTP operations API: health, metrics, a dry-run
// scanner and chat settings.
package api

import (
	"strconv"
	"time"

	"github.com/go-fuego/fuego"

	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/models"
	"github.com/blockedby/safebot/internal/scan"
	"github.com/blockedby/safebot/internal/telegram"
)

// ============================================================================
// System
// ============================================================================

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	return HealthResponse{
		Status:  "ok",
		Version: s.cfg.Version,
		Time:    time.Now().Format(time.RFC3339),
	}, nil
}

func (s *Server) getAuthStatus(c fuego.ContextNoBody) (AuthStatusResponse, error) {
	if s.deps.Telegram == nil {
		return AuthStatusResponse{Status: "DISCONNECTED"}, nil
	}

	status := s.deps.Telegram.GetStatus()
	return AuthStatusResponse{
		Status:       string(status),
		IsReady:      status == telegram.StatusReady,
		QRInProgress: s.deps.Telegram.IsQRInProgress(),
	}, nil
}

// ============================================================================
// Scan
// ============================================================================

func (s *Server) scanMessage(c fuego.ContextWithBody[ScanRequest]) (ScanResponse, error) {
	body, err := c.Body()
	if err != nil {
		return ScanResponse{}, fuego.BadRequestError{Detail: err.Error()}
	}
	if s.deps.Filter == nil {
		return ScanResponse{}, fuego.InternalServerError{Detail: "Scanner not configured"}
	}

	ents, err := ToEntities(body.Entities)
	if err != nil {
		return ScanResponse{}, fuego.BadRequestError{Detail: err.Error()}
	}

	msg := &entity.Message{
		Text:        body.Text,
		Entities:    ents,
		Sender:      body.Sender,
		ForwardFrom: body.ForwardFrom,
		IsReply:     body.IsReply,
		ButtonURLs:  body.ButtonURLs,
	}
	r := scan.NewReader(msg, s.deps.Filter(body.Deep))
	found := r.QuickScan()

	return ScanResponse{
		ShouldScan: r.ShouldScan(),
		Found:      found,
		CanEcho:    r.CanEcho(),
		Text:       r.FinalText(),
		Entities:   FromEntities(r.FinalEntities()),
	}, nil
}

// ============================================================================
// Chats
// ============================================================================

func (s *Server) getChat(c fuego.ContextNoBody) (ChatResponse, error) {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return ChatResponse{}, fuego.BadRequestError{Detail: "Invalid chat ID"}
	}

	chat, err := s.deps.Chats.Settings(c.Context(), id)
	if err != nil {
		return ChatResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	return ChatFromModel(chat), nil
}

func (s *Server) updateChat(c fuego.ContextWithBody[ChatUpdateRequest]) (ChatResponse, error) {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return ChatResponse{}, fuego.BadRequestError{Detail: "Invalid chat ID"}
	}

	body, err := c.Body()
	if err != nil {
		return ChatResponse{}, fuego.BadRequestError{Detail: err.Error()}
	}

	upd := models.ChatSettingsUpdate{SilentMode: body.SilentMode, EchoMode: body.EchoMode}
	if upd.IsEmpty() {
		return ChatResponse{}, fuego.BadRequestError{Detail: "Nothing to update"}
	}

	chat, err := s.deps.Chats.UpdateSettings(c.Context(), id, upd)
	if err != nil {
		return ChatResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	return ChatFromModel(chat), nil
}
