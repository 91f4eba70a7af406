package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propertyad/internal/model"
	"propertyad/internal/queue"
	"propertyad/internal/repository"
)

// DefaultSubmitDelay is the simulated backend latency.
const DefaultSubmitDelay = 2 * time.Second

// SimulatedSubmitter stands in for a listings backend: it waits a fixed delay
// and hands back a fresh id. Nothing is stored.
type SimulatedSubmitter struct {
	delay time.Duration
	log   *zap.Logger
}

func NewSimulatedSubmitter(delay time.Duration, log *zap.Logger) *SimulatedSubmitter {
	if delay < 0 {
		delay = DefaultSubmitDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SimulatedSubmitter{delay: delay, log: log}
}

// SubmitListing waits out the delay, or returns early if ctx is done.
func (s *SimulatedSubmitter) SubmitListing(ctx context.Context, listing *model.Listing) (string, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	id := uuid.NewString()
	s.log.Debug("simulated submit", zap.String("listing_id", id), zap.String("ad_title", listing.AdTitle))
	return id, nil
}

// ListingService stores submitted listings and announces them on the listings stream.
type ListingService struct {
	listingRepo repository.ListingRepository
	publisher   queue.Publisher
	log         *zap.Logger
}

// NewListingService wires the service; publisher may be nil when no stream is configured.
func NewListingService(listingRepo repository.ListingRepository, publisher queue.Publisher, log *zap.Logger) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{
		listingRepo: listingRepo,
		publisher:   publisher,
		log:         log.With(zap.String("component", "listing_service")),
	}
}

// SubmitListing persists the listing and publishes a listing_submitted event.
func (s *ListingService) SubmitListing(ctx context.Context, listing *model.Listing) (string, error) {
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return "", fmt.Errorf("create listing: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewListingSubmittedEvent(listing)
		msgID, err := s.publisher.Publish(ctx, queue.StreamListings, event)
		if err != nil {
			// The listing is stored; the event is best effort.
			s.log.Warn("publish listing_submitted failed", zap.String("listing_id", listing.ID), zap.Error(err))
		} else {
			s.log.Info("published listing_submitted", zap.String("listing_id", listing.ID), zap.String("msg_id", msgID))
		}
	}

	return listing.ID, nil
}

// GetByID returns a stored listing.
func (s *ListingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}
