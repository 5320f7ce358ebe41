// Package api exposes screening sessions over HTTP and MCP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
	"github.com/kalambet/talentscout/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

const defaultListLimit = 50

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Deps holds what the HTTP surface needs.
type Deps struct {
	Sessions *sessions.Manager
	// Token enables bearer auth on /v1 when non-empty.
	Token string
	// Engine names the text-generation backend for /health ("none" when templated).
	Engine string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// SendMessageRequest is the body of POST /v1/sessions/{id}/messages.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// NewHandler returns the screening HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/", handleStartSession(deps))
		r.Get("/", handleListSessions(deps))
		r.Get("/{id}", handleGetSession(deps))
		r.Delete("/{id}", handleDeleteSession(deps))
		r.Post("/{id}/messages", handleSendMessage(deps))
		r.Post("/{id}/reset", handleResetSession(deps))
		r.Get("/{id}/export", handleExportSession(deps))
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	engine := deps.Engine
	if engine == "" {
		engine = "none"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "engine": engine})
	}
}

func handleStartSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started, err := deps.Sessions.Start(r.Context())
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, started)
	}
}

func handleListSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be an integer between 1 and 500")
				return
			}
			limit = n
		}
		list, err := deps.Sessions.List(r.Context(), limit)
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
	}
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			sessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSendMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := validate.Struct(req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", validationMessage(err))
			return
		}

		reply, err := deps.Sessions.Send(r.Context(), chi.URLParam(r, "id"), req.Message)
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func handleResetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started, err := deps.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, started)
	}
}

func handleExportSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := deps.Sessions.Export(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			sessionError(w, err)
			return
		}
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", screening.FileName(doc, time.Now())))
		writeJSON(w, http.StatusOK, doc)
	}
}

// validationMessage reports the first failed rule of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("validation error: %s - %s", fe.Field(), fe.Tag())
	}
	return "validation error: invalid request"
}

func sessionError(w http.ResponseWriter, err error) {
	var serr *screening.SchemaError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "session not found")
	case errors.As(err, &serr):
		slog.Error("export failed schema validation", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	default:
		slog.Error("session operation failed", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
