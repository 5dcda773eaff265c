package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

const (
	TableName  = "outbox_messages"
	EntityName = "outbox_message"

	FieldID            = "id"
	FieldKind          = "kind"
	FieldStatus        = "status"
	FieldAttempts      = "attempts"
	FieldNextAttemptAt = "next_attempt_at"
	FieldLastError     = "last_error"
	FieldModifiedAt    = "modified_at"
)

const (
	// KindOrchestration rows carry a side-effect job for one appointment transition.
	KindOrchestration = "ORCHESTRATION"
	// KindEvent rows carry a ready payload for the bus.
	KindEvent = "EVENT"
)

const (
	StatusPending   = "PENDING"
	StatusDelivered = "DELIVERED"
	StatusDead      = "DEAD"
)

type Message struct {
	ID            string         `db:"id"`
	Kind          string         `db:"kind"`
	Organisation  string         `db:"organisation"`
	AggregateID   string         `db:"aggregate_id"`
	Exchange      string         `db:"exchange"`
	RoutingKey    string         `db:"routing_key"`
	Payload       types.JSONText `db:"payload"`
	Status        string         `db:"status"`
	Attempts      int            `db:"attempts"`
	NextAttemptAt time.Time      `db:"next_attempt_at"`
	LastError     *string        `db:"last_error"`
	CreatedAt     time.Time      `db:"created_at"`
	ModifiedAt    time.Time      `db:"modified_at"`
}

func newMessage(kind, organisation, aggregateID string, payload any, now time.Time) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	return Message{
		ID:            uuid.NewString(),
		Kind:          kind,
		Organisation:  organisation,
		AggregateID:   aggregateID,
		Payload:       types.JSONText(raw),
		Status:        StatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		ModifiedAt:    now,
	}, nil
}

// NewOrchestration wraps a side-effect job so it commits with the transition that caused it.
func NewOrchestration(organisation, aggregateID string, job any, now time.Time) (Message, error) {
	return newMessage(KindOrchestration, organisation, aggregateID, job, now)
}

func NewEvent(organisation, aggregateID, exchange, routingKey string, payload any, now time.Time) (Message, error) {
	msg, err := newMessage(KindEvent, organisation, aggregateID, payload, now)
	if err != nil {
		return msg, err
	}

	msg.Exchange = exchange
	msg.RoutingKey = routingKey

	return msg, nil
}
