package repository

import (
	"context"

	"propertyad/internal/model"
)

type ListingRepository interface {
	// Create stores the listing and its image metadata, assigning listing.ID when empty
	Create(ctx context.Context, listing *model.Listing) error
	// GetByID returns the listing with its images in upload order
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}
