package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"propertyad/internal/model"
)

// Event types for the listings stream
const (
	EventListingSubmitted = "listing_submitted"
)

// Stream names
const (
	StreamListings = "stream:listings"
)

// ListingEvent is published once a listing has been stored.
type ListingEvent struct {
	Type       string `json:"type"`
	Timestamp  int64  `json:"timestamp"` // Unix timestamp when event occurred
	ListingID  string `json:"listing_id"`
	AdTitle    string `json:"ad_title"`
	Price      int64  `json:"price"`
	State      string `json:"state"`
	ImageCount int    `json:"image_count"`
}

// NewListingSubmittedEvent creates an event for a freshly stored listing.
func NewListingSubmittedEvent(l *model.Listing) ListingEvent {
	return ListingEvent{
		Type:       EventListingSubmitted,
		Timestamp:  time.Now().Unix(),
		ListingID:  l.ID,
		AdTitle:    l.AdTitle,
		Price:      l.Price,
		State:      l.State,
		ImageCount: len(l.Images),
	}
}

// ToMap converts the event to a map for Redis XADD.
// The full event is serialized as JSON in the "data" field.
func (e ListingEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseListingEvent parses a ListingEvent from Redis stream message values.
func ParseListingEvent(values map[string]interface{}) (ListingEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ListingEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ListingEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ListingEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
