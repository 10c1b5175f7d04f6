// Package domain defines the core persistence models for the application.
// This file defines the closed set of tagged event variants emitted by the
// deal/claim lifecycle. Payloads are validated at construction so consumers
// never see a partially populated event.
package domain

import (
	"errors"
	"time"
)

// Event types. The set is closed: the dispatcher rejects anything else.
const (
	EventDealCreated   = "deal.created"
	EventDealClaimed   = "deal.claimed"
	EventClaimRedeemed = "claim.redeemed"
	EventDealExpired   = "deal.expired"
	EventDealCancelled = "deal.cancelled"
)

// ErrInvalidEvent is returned when an event is missing required fields or
// carries an unknown type tag.
var ErrInvalidEvent = errors.New("invalid event")

// Event is a fire-and-forget lifecycle notification. Delivery is
// at-least-once, so consumers deduplicate on (Type, DealID, OccurredAt).
type Event struct {
	Type       string    `json:"type"`
	DealID     string    `json:"deal_id"`
	BusinessID string    `json:"business_id"`
	City       string    `json:"city,omitempty"`
	ClaimID    string    `json:"claim_id,omitempty"`
	ConsumerID string    `json:"consumer_id,omitempty"`
	ClaimCount int       `json:"claim_count,omitempty"`
	DealTitle  string    `json:"deal_title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// knownEventTypes enumerates every valid type tag.
var knownEventTypes = map[string]struct{}{
	EventDealCreated:   {},
	EventDealClaimed:   {},
	EventClaimRedeemed: {},
	EventDealExpired:   {},
	EventDealCancelled: {},
}

// Validate checks the tag and the per-tag required fields.
func (e Event) Validate() error {
	if _, ok := knownEventTypes[e.Type]; !ok {
		return ErrInvalidEvent
	}
	if e.DealID == "" || e.BusinessID == "" || e.OccurredAt.IsZero() {
		return ErrInvalidEvent
	}
	switch e.Type {
	case EventDealClaimed:
		if e.ClaimID == "" || e.ConsumerID == "" {
			return ErrInvalidEvent
		}
	case EventClaimRedeemed:
		if e.ClaimID == "" || e.ConsumerID == "" {
			return ErrInvalidEvent
		}
	}
	return nil
}

// DedupeKey identifies this event for idempotent consumption.
func (e Event) DedupeKey() string {
	return e.Type + "|" + e.DealID + "|" + e.OccurredAt.UTC().Format(time.RFC3339Nano)
}
