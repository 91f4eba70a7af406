package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"propertyad/internal/httputil"
	"propertyad/internal/model"
)

// ListingReader looks up stored listings. *service.ListingService implements it.
type ListingReader interface {
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

type ListingHandler struct {
	listings ListingReader
	log      *zap.Logger
}

func NewListingHandler(listings ListingReader, log *zap.Logger) *ListingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingHandler{listings: listings, log: log}
}

// GetByID handles GET /listings/{id}
// Only routed when submitted listings are stored.
func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrListingMissing) {
			httputil.WriteNotFound(w, "Listing not found")
			return
		}
		h.log.Error("get listing", zap.String("listing_id", id), zap.Error(err))
		httputil.WriteInternalError(w, "Failed to get listing")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listing)
}
