// internal/server/handlers/hotplace.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"livejourney/internal/domain/hotplace"
)

// MaxListLimit caps the limit query parameter
const MaxListLimit = 100

// HotPlaceHandler handles hot place HTTP requests
type HotPlaceHandler struct {
	detector hotplace.Detector
}

// NewHotPlaceHandler creates a new hot place handler
func NewHotPlaceHandler(detector hotplace.Detector) *HotPlaceHandler {
	return &HotPlaceHandler{
		detector: detector,
	}
}

// HotPlaceResponse is a ranked place with its display heat
type HotPlaceResponse struct {
	hotplace.HotPlace
	Heat int `json:"heat"`
}

func toResponses(places []hotplace.HotPlace) []HotPlaceResponse {
	out := make([]HotPlaceResponse, len(places))
	for i, p := range places {
		out[i] = HotPlaceResponse{HotPlace: p, Heat: p.Heat()}
	}
	return out
}

// ListHotPlaces returns the latest ranking
func (h *HotPlaceHandler) ListHotPlaces(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	places, err := h.detector.GetHotPlaces(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get hot places", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toResponses(places))
}

// GetHotPlace returns a specific hot place by key
func (h *HotPlaceHandler) GetHotPlace(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		respondWithError(w, http.StatusBadRequest, "Missing hot place key", nil)
		return
	}

	p, err := h.detector.GetHotPlace(r.Context(), key)
	if err != nil {
		if errors.Is(err, hotplace.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Hot place not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get hot place", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, HotPlaceResponse{HotPlace: *p, Heat: p.Heat()})
}

// RefreshHotPlaces runs a ranking pass immediately
func (h *HotPlaceHandler) RefreshHotPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.detector.Refresh(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to refresh hot places", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toResponses(places))
}

func parseFilter(r *http.Request) (hotplace.Filter, error) {
	q := r.URL.Query()
	filter := hotplace.Filter{
		Region: q.Get("region"),
		Limit:  20,
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = min(limit, MaxListLimit)
	}

	if v := q.Get("min_score"); v != "" {
		minScore, err := strconv.ParseFloat(v, 64)
		if err != nil || minScore < 0 || minScore > 1 {
			return filter, errors.New("min_score must be a number between 0 and 1")
		}
		filter.MinScore = minScore
	}

	if v := q.Get("rising"); v != "" {
		rising, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("rising must be a boolean")
		}
		filter.RisingOnly = rising
	}

	if v := q.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("verified must be a boolean")
		}
		filter.VerifiedOnly = verified
	}

	return filter, nil
}
