package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FocuswithJustin/codemark/core/cache"
	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/internal/logging"
	"github.com/FocuswithJustin/codemark/internal/server"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
	Timestamp string `json:"timestamp"`
}

// AnnotationInfo describes a registered annotation.
type AnnotationInfo struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Target   string   `json:"target"`
	Scopes   []string `json:"scopes"`
	Priority int      `json:"priority"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status      string      `json:"status"`
	Version     string      `json:"version"`
	Uptime      string      `json:"uptime"`
	Annotations int         `json:"annotations"`
	Registry    string      `json:"registry"`
	Sessions    int         `json:"sessions"`
	Cache       cache.Stats `json:"cache"`
}

var jsonContentTypes = []string{"application/json"}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "codemark",
		"version": s.version,
		"endpoints": []string{
			"GET /health",
			"GET /annotations",
			"POST /build",
			"POST /serialize",
			"POST /encode",
			"POST /decode",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	info := HealthInfo{
		Status:      "healthy",
		Version:     s.version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Annotations: s.registry.Len(),
		Registry:    s.registry.Fingerprint(),
		Sessions:    s.hub.Count(),
	}
	if s.results != nil {
		info.Cache = s.results.Stats()
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	items := s.registry.Items()
	infos := make([]AnnotationInfo, 0, len(items))
	for _, it := range items {
		scopes := make([]string, len(it.Scopes))
		for i, sc := range it.Scopes {
			scopes[i] = string(sc)
		}
		infos = append(infos, AnnotationInfo{
			Name:     it.Name,
			Kind:     string(it.Kind),
			Target:   it.Target(),
			Scopes:   scopes,
			Priority: it.Priority,
		})
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    infos,
		Meta: &APIMeta{
			Total:     len(infos),
			Timestamp: now(),
		},
	})
}

// handleOperation serves one conversion operation. Successful results are
// cached by operation, registry and request body.
func (s *Server) handleOperation(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" && !server.ValidateContentType(ct, jsonContentTypes) {
			respondError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Request body must be application/json")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logging.SecurityEvent("request_too_large", "api",
					"path", r.URL.Path,
					"limit", tooLarge.Limit)
				respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body exceeds the size limit")
				return
			}
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
			return
		}

		key := cache.ResultKey(op, s.registry.Fingerprint(), body)
		if s.results != nil {
			if data, ok := s.results.Get(key); ok {
				writeJSON(w, http.StatusOK, APIResponse{
					Success: true,
					Data:    json.RawMessage(data),
					Meta:    &APIMeta{Cached: true, Timestamp: now()},
				})
				return
			}
		}

		result, err := s.execute(r.Context(), op, body)
		if err != nil {
			status, code := errorStatus(err)
			if status >= http.StatusInternalServerError {
				logging.ErrorContext(r.Context(), "operation failed", "op", op, "error", err)
			}
			respondError(w, status, code, err.Error())
			return
		}

		data, err := json.Marshal(result)
		if err != nil {
			logging.ErrorContext(r.Context(), "failed to marshal result", "op", op, "error", err)
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode result")
			return
		}
		if s.results != nil {
			s.results.Put(key, data)
		}
		respond(w, http.StatusOK, json.RawMessage(data))
	}
}

// errorStatus maps an operation error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	var perr *cerrors.ParseError
	switch {
	case cerrors.As(err, &perr):
		return http.StatusBadRequest, "INVALID_" + strings.ToUpper(perr.Format)
	case cerrors.Is(err, cerrors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_DOCUMENT"
	case cerrors.Is(err, cerrors.ErrUnsupported):
		return http.StatusBadRequest, "UNSUPPORTED_OPERATION"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: now()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{Timestamp: now()},
	})
}

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error("failed to write response", "error", err)
	}
}
