package events

import (
	"encoding/json"
	"time"
)

// Envelope is the shared event shape used across peerbonus contexts.
// Producers persist it to the outbox; the worker relay publishes it verbatim.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAtUTC time.Time       `json:"occurred_at_utc"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}
