package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/aggregator"
	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
)

// SearchHandler serves the aggregated search endpoint.
//
// GET /api/search?q=...&limit=10&min_results=5&user_id=...&recommendations=true
type SearchHandler struct {
	agg    *aggregator.Aggregator
	logger *log.Logger
}

func NewSearchHandler(agg *aggregator.Aggregator, logger *log.Logger) *SearchHandler {
	return &SearchHandler{agg: agg, logger: logger}
}

func (h *SearchHandler) Routes() []string {
	return []string{"/api/search"}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	req := aggregator.Request{
		Query:                  query,
		Limit:                  intParam(r, "limit"),
		MinResults:             intParam(r, "min_results"),
		UserID:                 r.URL.Query().Get("user_id"),
		IncludeRecommendations: r.URL.Query().Get("recommendations") == "true",
	}

	resp, err := h.agg.Search(r.Context(), req)
	if err != nil {
		// Total provider exhaustion surfaces as an empty result set, so an
		// error here is unexpected.
		h.logger.Error("aggregated search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// TrackHandler serves single-track lookups.
//
// GET /api/track?provider=spotify&id=...&user_id=...
type TrackHandler struct {
	agg    *aggregator.Aggregator
	logger *log.Logger
}

func NewTrackHandler(agg *aggregator.Aggregator, logger *log.Logger) *TrackHandler {
	return &TrackHandler{agg: agg, logger: logger}
}

func (h *TrackHandler) Routes() []string {
	return []string{"/api/track"}
}

func (h *TrackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tag, err := providers.ParseTag(r.URL.Query().Get("provider"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing track id")
		return
	}

	track, err := h.agg.Track(r.Context(), r.URL.Query().Get("user_id"), tag, id)
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("track lookup failed", "provider", tag, "id", id, "error", err)
		writeError(w, status, "track lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// WishHandler serves the wish queue.
//
// GET /api/wishes lists the queue; POST /api/wishes appends a wish.
type WishHandler struct {
	wishes *repositories.WishRepository
	logger *log.Logger
}

func NewWishHandler(wishes *repositories.WishRepository, logger *log.Logger) *WishHandler {
	return &WishHandler{wishes: wishes, logger: logger}
}

func (h *WishHandler) Routes() []string {
	return []string{"/api/wishes"}
}

type wishPayload struct {
	Provider    string `json:"provider"`
	TrackID     string `json:"track_id"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	URL         string `json:"url,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
	Position    int    `json:"position,omitempty"`
	ID          string `json:"id,omitempty"`
}

func (h *WishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.add(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *WishHandler) list(w http.ResponseWriter) {
	queue, err := h.wishes.List()
	if err != nil {
		h.logger.Error("failed to list wishes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list wishes")
		return
	}

	payload := make([]wishPayload, len(queue))
	for i, wish := range queue {
		payload[i] = wishPayload{
			ID:          wish.ID,
			Provider:    wish.Provider,
			TrackID:     wish.TrackID,
			Title:       wish.Title,
			Artist:      wish.Artist,
			Album:       wish.Album,
			ImageURL:    wish.ImageURL,
			URL:         wish.URL,
			DurationMS:  wish.DurationMS,
			RequestedBy: wish.RequestedBy,
			Position:    wish.Position,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"wishes": payload})
}

func (h *WishHandler) add(w http.ResponseWriter, r *http.Request) {
	var payload wishPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := providers.ParseTag(payload.Provider); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wish := &models.Wish{
		Provider:    payload.Provider,
		TrackID:     payload.TrackID,
		Title:       payload.Title,
		Artist:      payload.Artist,
		Album:       payload.Album,
		ImageURL:    payload.ImageURL,
		URL:         payload.URL,
		DurationMS:  payload.DurationMS,
		RequestedBy: payload.RequestedBy,
	}

	if err := h.wishes.Add(wish); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to add wish", "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	payload.ID = wish.ID
	payload.Position = wish.Position
	writeJSON(w, http.StatusCreated, payload)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrDuplicateWish):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotConnected), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusFailedDependency
	case errors.Is(err, shared.ErrProviderTimeout), errors.Is(err, shared.ErrProviderConnection),
		errors.Is(err, shared.ErrProviderServer), errors.Is(err, shared.ErrProviderClient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func intParam(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}
