package entities

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAppOpen            EventType = "app_open"
	EventConversion         EventType = "conversion"
	EventCurrencyAdded      EventType = "currency_added"
	EventCurrencyRemoved    EventType = "currency_removed"
	EventSettingsChanged    EventType = "settings_changed"
	EventCopy               EventType = "copy"
	EventInstall            EventType = "install"
	EventDonationStarted    EventType = "donation_started"
	EventDonationPaid       EventType = "donation_paid"
	EventRatesRefreshFailed EventType = "rates_refresh_failed"
)

var allowedEvents = map[EventType]struct{}{
	EventAppOpen:            {},
	EventConversion:         {},
	EventCurrencyAdded:      {},
	EventCurrencyRemoved:    {},
	EventSettingsChanged:    {},
	EventCopy:               {},
	EventInstall:            {},
	EventDonationStarted:    {},
	EventDonationPaid:       {},
	EventRatesRefreshFailed: {},
}

func (t EventType) Allowed() bool {
	_, ok := allowedEvents[t]
	return ok
}

type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      EventType         `json:"type"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewEvent(t EventType, payload map[string]string, at time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      t,
		Payload:   payload,
		CreatedAt: at,
	}
}
