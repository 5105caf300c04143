package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
// Consumers dispatch decoders on Version, so the wrapper fields never change
// shape; only Data evolves.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID         uuid.UUID `json:"userId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}
