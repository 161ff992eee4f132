// internal/server/handlers/ingest.go

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"livejourney/internal/adapter/events"
	"livejourney/internal/domain/hotplace"
	"livejourney/internal/validation"
)

// maxBodyBytes limits ingestion request bodies
const maxBodyBytes = 1 << 20

// Ingester stores decoded ingestion payloads. *events.Ingester satisfies it.
type Ingester interface {
	IngestObservation(ctx context.Context, transport string, data []byte) (hotplace.Observation, error)
	IngestSearch(ctx context.Context, transport string, data []byte) (hotplace.SearchEvent, error)
}

// IngestHandler accepts observations and search events over HTTP
type IngestHandler struct {
	ingester Ingester
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingester Ingester) *IngestHandler {
	return &IngestHandler{
		ingester: ingester,
	}
}

// CreateObservation stores one observation
func (h *IngestHandler) CreateObservation(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	o, err := h.ingester.IngestObservation(r.Context(), events.TransportHTTP, body)
	if err != nil {
		respondWithIngestError(w, "Failed to store observation", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

// CreateSearch stores one search event
func (h *IngestHandler) CreateSearch(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	e, err := h.ingester.IngestSearch(r.Context(), events.TransportHTTP, body)
	if err != nil {
		respondWithIngestError(w, "Failed to store search event", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, e)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
		} else {
			respondWithError(w, http.StatusBadRequest, "Failed to read request body", nil)
		}
		return nil, false
	}
	return body, true
}

func respondWithIngestError(w http.ResponseWriter, message string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		respondWithDetails(w, http.StatusBadRequest, "Invalid request payload", verrs)
	case errors.Is(err, hotplace.ErrInvalidEvent):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, message, err)
	}
}
