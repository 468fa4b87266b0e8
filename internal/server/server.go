package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/persona"
	"github.com/convoplay/convoplay/internal/provider"
	"github.com/convoplay/convoplay/internal/service"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// ArchiveReader reads back archived turns; nil when the archive is off.
type ArchiveReader interface {
	SessionTurns(ctx context.Context, sessionID uuid.UUID) ([]domain.ArchivedTurn, error)
}

type Server struct {
	sessions *service.SessionStore
	models   *service.ModelManager
	catalog  *service.Catalog
	archive  ArchiveReader
}

func New(sessions *service.SessionStore, models *service.ModelManager, catalog *service.Catalog, archive ArchiveReader) *Server {
	return &Server{
		sessions: sessions,
		models:   models,
		catalog:  catalog,
		archive:  archive,
	}
}

// Router builds the HTTP surface: the embedded single-page UI at / and
// the JSON API under /api.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods("GET")
	api.HandleFunc("/chat", s.handleChat).Methods("POST")
	api.HandleFunc("/config", s.handleConfig).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/export", s.handleExport).Methods("GET")
	api.HandleFunc("/catalog", s.handleCatalog).Methods("GET")
	api.HandleFunc("/archive", s.handleArchive).Methods("GET")

	var h http.Handler = r
	h = SessionLoader(s.sessions)(h)
	h = Logging()(h)
	h = Recover()(h)
	return h
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		slog.Error("render index", "error", err)
	}
}

type stateResponse struct {
	SessionID      string               `json:"session_id"`
	Config         domain.SessionConfig `json:"config"`
	Stats          domain.SessionStats  `json:"stats"`
	Messages       []domain.Message     `json:"messages"`
	Personas       []domain.Persona     `json:"personas"`
	Models         []domain.LLMModel    `json:"models"`
	ArchiveEnabled bool                 `json:"archive_enabled"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	conv := GetConversation(r.Context())

	writeJSON(w, http.StatusOK, stateResponse{
		SessionID:      conv.ID().String(),
		Config:         conv.Config(),
		Stats:          conv.Stats(),
		Messages:       conv.History(),
		Personas:       persona.List(),
		Models:         s.models.List(),
		ArchiveEnabled: s.archive != nil,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string              `json:"reply"`
	Stats domain.SessionStats `json:"stats"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conv := GetConversation(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.RequestTimeout)
	defer cancel()

	reply, err := conv.Submit(ctx, req.Message)
	if err != nil {
		slog.Error("submit", "error", err, "session", conv.ID())
		status, msg := chatErrorStatus(ctx, err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Stats: conv.Stats()})
}

func chatErrorStatus(ctx context.Context, err error) (int, string) {
	var provErr *provider.Error
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	// Both clients wrap transport errors, so the deadline has to be
	// checked through the wrap chain before the provider-error case.
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return http.StatusGatewayTimeout, "provider did not answer in time"
	case errors.As(err, &provErr):
		if provErr.RateLimited() {
			return http.StatusTooManyRequests, provErr.Error()
		}
		return http.StatusBadGateway, provErr.Error()
	default:
		return http.StatusBadGateway, err.Error()
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	conv := GetConversation(r.Context())

	var patch domain.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := conv.UpdateConfig(patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"config": conv.Config()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	conv := GetConversation(r.Context())
	conv.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"stats": conv.Stats()})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	models, err := s.catalog.ListModels(r.Context())
	if err != nil {
		slog.Error("list catalog", "error", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, domain.ErrArchiveDisabled.Error())
		return
	}

	conv := GetConversation(r.Context())
	turns, err := s.archive.SessionTurns(r.Context(), conv.ID())
	if err != nil {
		slog.Error("read archive", "error", err, "session", conv.ID())
		writeError(w, http.StatusInternalServerError, "archive read failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
