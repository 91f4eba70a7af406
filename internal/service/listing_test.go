package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"propertyad/internal/model"
	"propertyad/internal/queue"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockListingRepository struct {
	createFn  func(ctx context.Context, listing *model.Listing) error
	getByIDFn func(ctx context.Context, id string) (*model.Listing, error)

	createCalls []*model.Listing
}

func (m *mockListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	m.createCalls = append(m.createCalls, listing)
	if m.createFn != nil {
		return m.createFn(ctx, listing)
	}
	return nil
}

func (m *mockListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrListingMissing
}

type publishCall struct {
	Stream string
	Event  queue.ListingEvent
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.ListingEvent) (string, error)
	calls     []publishCall
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ListingEvent) (string, error) {
	m.calls = append(m.calls, publishCall{Stream: stream, Event: event})
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

func testListing() *model.Listing {
	return &model.Listing{
		Type:    "Flats / Apartments",
		AdTitle: "Spacious 2BHK",
		Price:   5000000,
		State:   "Karnataka",
		Images:  []model.ImageMeta{{ID: "img-1", Name: "front.jpg"}, {ID: "img-2", Name: "hall.jpg"}},
	}
}

// =============================================================================
// SIMULATED SUBMITTER TESTS
// =============================================================================

func TestSimulatedSubmitter_WaitsThenReturnsID(t *testing.T) {
	s := NewSimulatedSubmitter(20*time.Millisecond, nil)

	start := time.Now()
	id, err := s.SubmitListing(context.Background(), testListing())

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id == "" {
		t.Error("expected a listing id")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %s, want at least 20ms", elapsed)
	}
}

func TestSimulatedSubmitter_ContextCancelled(t *testing.T) {
	s := NewSimulatedSubmitter(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SubmitListing(ctx, testListing())

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestSimulatedSubmitter_NegativeDelayUsesDefault(t *testing.T) {
	s := NewSimulatedSubmitter(-1, nil)
	if s.delay != DefaultSubmitDelay {
		t.Errorf("delay = %s, want %s", s.delay, DefaultSubmitDelay)
	}
}

// =============================================================================
// LISTING SERVICE TESTS
// =============================================================================

func TestListingService_SubmitListing_StoresAndPublishes(t *testing.T) {
	// ARRANGE
	repo := &mockListingRepository{
		createFn: func(ctx context.Context, listing *model.Listing) error {
			listing.ID = "listing-42"
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := NewListingService(repo, pub, nil)

	// ACT
	id, err := svc.SubmitListing(context.Background(), testListing())

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id != "listing-42" {
		t.Errorf("id = %q, want listing-42", id)
	}
	if len(repo.createCalls) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(repo.createCalls))
	}
	if len(pub.calls) != 1 {
		t.Fatalf("expected 1 Publish call, got %d", len(pub.calls))
	}
	call := pub.calls[0]
	if call.Stream != queue.StreamListings {
		t.Errorf("stream = %q, want %q", call.Stream, queue.StreamListings)
	}
	if call.Event.Type != queue.EventListingSubmitted || call.Event.ListingID != "listing-42" || call.Event.ImageCount != 2 {
		t.Errorf("unexpected event: %+v", call.Event)
	}
}

func TestListingService_SubmitListing_RepositoryError(t *testing.T) {
	repo := &mockListingRepository{
		createFn: func(ctx context.Context, listing *model.Listing) error {
			return errors.New("connection refused")
		},
	}
	pub := &mockPublisher{}
	svc := NewListingService(repo, pub, nil)

	_, err := svc.SubmitListing(context.Background(), testListing())

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(pub.calls) != 0 {
		t.Error("nothing should be published when the listing was not stored")
	}
}

func TestListingService_SubmitListing_PublishFailureIsNotFatal(t *testing.T) {
	repo := &mockListingRepository{
		createFn: func(ctx context.Context, listing *model.Listing) error {
			listing.ID = "listing-7"
			return nil
		},
	}
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, stream string, event queue.ListingEvent) (string, error) {
			return "", errors.New("redis down")
		},
	}
	svc := NewListingService(repo, pub, nil)

	id, err := svc.SubmitListing(context.Background(), testListing())

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id != "listing-7" {
		t.Errorf("id = %q, want listing-7", id)
	}
}

func TestListingService_SubmitListing_NoPublisher(t *testing.T) {
	repo := &mockListingRepository{}
	svc := NewListingService(repo, nil, nil)

	if _, err := svc.SubmitListing(context.Background(), testListing()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(repo.createCalls) != 1 {
		t.Errorf("expected 1 Create call, got %d", len(repo.createCalls))
	}
}

func TestListingService_GetByID(t *testing.T) {
	repo := &mockListingRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Listing, error) {
			if id == "known" {
				return &model.Listing{ID: id, AdTitle: "Flat"}, nil
			}
			return nil, model.ErrListingMissing
		},
	}
	svc := NewListingService(repo, nil, nil)

	got, err := svc.GetByID(context.Background(), "known")
	if err != nil || got.AdTitle != "Flat" {
		t.Errorf("GetByID(known) = %+v, %v", got, err)
	}
	if _, err := svc.GetByID(context.Background(), "other"); !errors.Is(err, model.ErrListingMissing) {
		t.Errorf("GetByID(other) err = %v, want ErrListingMissing", err)
	}
}
