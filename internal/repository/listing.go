package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"propertyad/internal/model"
)

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create inserts a listing and its image rows in a transaction.
func (r *listingRepository) Create(ctx context.Context, listing *model.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO listings (
			id, property_type, bhk, bathrooms, furnishing, project_status, listed_by,
			super_builtup_area, carpet_area, maintenance, total_floors, floor_no,
			car_parking, facing, project_name, ad_title, description, price, state
		) VALUES (
			:id, :property_type, :bhk, :bathrooms, :furnishing, :project_status, :listed_by,
			:super_builtup_area, :carpet_area, :maintenance, :total_floors, :floor_no,
			:car_parking, :facing, :project_name, :ad_title, :description, :price, :state
		)
		RETURNING created_at
	`
	query, args, err := tx.BindNamed(query, listing)
	if err != nil {
		return fmt.Errorf("bind listing: %w", err)
	}
	if err := tx.GetContext(ctx, &listing.CreatedAt, query, args...); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	imageQuery := `
		INSERT INTO listing_images (listing_id, attachment_id, name, content_type, size_bytes, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, img := range listing.Images {
		if _, err := tx.ExecContext(ctx, imageQuery, listing.ID, img.ID, img.Name, img.ContentType, img.Size, i); err != nil {
			return fmt.Errorf("insert image %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a listing with its images.
func (r *listingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `
		SELECT id, property_type, bhk, bathrooms, furnishing, project_status, listed_by,
			super_builtup_area, carpet_area, maintenance, total_floors, floor_no,
			car_parking, facing, project_name, ad_title, description, price, state, created_at
		FROM listings
		WHERE id = $1
	`
	var listing model.Listing
	err := r.db.GetContext(ctx, &listing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrListingMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	images := []model.ImageMeta{}
	err = r.db.SelectContext(ctx, &images, `
		SELECT attachment_id, name, content_type, size_bytes
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get listing images: %w", err)
	}
	listing.Images = images

	return &listing, nil
}
