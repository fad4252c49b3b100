package commands

import (
	"encoding/json"
	"time"

	"peerbonus/internal/shared/events"
)

func newLedgerEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data map[string]any,
) (events.Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return events.Envelope{}, err
	}
	return events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "vote-ledger",
		OccurredAtUTC: occurredAt.UTC(),
		EntityType:    "session",
		EntityID:      sessionID,
		SchemaVersion: 1,
		Payload:       payload,
	}, nil
}
