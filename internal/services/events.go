package services

import (
	"context"
	"encoding/json"

	"github.com/ledgerly/apiserver/types"
)

// Entry lifecycle event kinds published to the broker.
const (
	EventEntryCreated       = "entry.created"
	EventEntryUpdated       = "entry.updated"
	EventEntryStatusChanged = "entry.status_changed"
	EventEntryDeleted       = "entry.deleted"
)

// EntryEventsChannel is the broker channel entry events are published to.
const EntryEventsChannel = "entry-events"

// EventPublisher sends entry events to a message broker. mq.MQ satisfies
// this interface.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// EntryEvent is the JSON payload published for every entry mutation.
type EntryEvent struct {
	Event string      `json:"event"`
	Entry types.Entry `json:"entry"`
}

// publishEntryEvent sends an event snapshot to the broker. Delivery is
// best-effort: the API response does not depend on the broker being up.
func publishEntryEvent(ctx context.Context, events EventPublisher, kind string, entry types.Entry) {
	if events == nil {
		return
	}
	payload, err := json.Marshal(EntryEvent{Event: kind, Entry: entry})
	if err != nil {
		return
	}
	_, _ = events.Publish(ctx, EntryEventsChannel, payload, map[string]string{"event": kind})
}
