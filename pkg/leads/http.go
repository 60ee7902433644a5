package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
	"github.com/leadvalidator/platform/pkg/projects"
)

// ProjectResolver maps a submitted API key to project configuration.
type ProjectResolver interface {
	Resolve(ctx context.Context, apiKey string) (*projects.Project, error)
}

// Reader is the read-only slice of the repository the HTTP layer needs.
type Reader interface {
	Get(ctx context.Context, id string) (*Lead, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]Lead, error)
}

type HTTPHandler struct {
	service  *Service
	reader   Reader
	resolver ProjectResolver
}

// NewHTTPHandler builds the lead capture surface. Request body size limits
// are enforced by the router's BodyLimit middleware, not here.
func NewHTTPHandler(service *Service, reader Reader, resolver ProjectResolver) *HTTPHandler {
	return &HTTPHandler{service: service, reader: reader, resolver: resolver}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/validate", h.handleValidate).Methods(http.MethodPost)
	router.HandleFunc("/leads", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/leads/{id}", h.handleGet).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid validation payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fillClientMetadata(&req, r)

	resp, err := h.service.Process(r.Context(), project, req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to process submission")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorize(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	lead, err := h.reader.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch lead")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if lead.ProjectID != project.ID {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorize(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r, 50)
	list, err := h.reader.ListByProject(r.Context(), project.ID, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list leads")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

func (h *HTTPHandler) authorize(w http.ResponseWriter, r *http.Request) (*projects.Project, bool) {
	apiKey := bearerToken(r)
	if apiKey == "" {
		http.Error(w, "missing API key", http.StatusUnauthorized)
		return nil, false
	}

	project, err := h.resolver.Resolve(r.Context(), apiKey)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return nil, false
		}
		logger.Log.WithError(err).Error("failed to resolve API key")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	return project, true
}

func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return strings.TrimSpace(token)
}

// fillClientMetadata backfills client context the capture snippet did not
// send from what the request itself carries.
func fillClientMetadata(req *models.ValidateRequest, r *http.Request) {
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	if req.Referrer == "" {
		req.Referrer = r.Referer()
	}
	if req.IPAddress == "" {
		req.IPAddress = clientIP(r)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
