package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/payloads"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/registry"
)

func TestBatchSurvivesTransientPublishFailure(t *testing.T) {
	first := orderEvent(t, enums.EventOrderCreated, 0)
	second := orderEvent(t, enums.EventOrderCreated, 0)

	repo := &stubOutboxRepo{events: []models.OutboxEvent{first, second}}
	pub := &scriptedPublisher{results: []publishResult{
		scriptedResult{err: errors.New("transient")},
		scriptedResult{},
	}}
	svc := serviceUnderTest(t, testDeps{
		repo:     repo,
		pub:      pub,
		resolver: &stubResolver{resolved: resolvedOrder(&payloads.OrderCreatedEvent{})},
	})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	// The failing row gets retried later; the rest of the batch still lands.
	require.Len(t, repo.failed, 1)
	require.Len(t, repo.published, 1)
	assert.Equal(t, first.ID, repo.failed[0])
	assert.Equal(t, second.ID, repo.published[0])
}

func TestUnresolvableEventGoesToDLQ(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventProductLowStock,
		AggregateType: enums.AggregateProduct,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(t, "nonretryable"),
	}
	repo := &stubOutboxRepo{events: []models.OutboxEvent{event}}
	dlq := &stubDLQRepo{}
	svc := serviceUnderTest(t, testDeps{
		repo:     repo,
		pub:      &scriptedPublisher{},
		resolver: &stubResolver{err: registry.NewNonRetryableError(errors.New("invalid payload"))},
		dlq:      dlq,
	})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, dlq.entries, 1)
	entry := dlq.entries[0]
	assert.Equal(t, event.ID, entry.EventID)
	assert.Equal(t, []byte(event.Payload), []byte(entry.Payload))
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, entry.ErrorReason)
	assert.Len(t, repo.terminal, 1)
}

func TestExhaustedAttemptsGoToDLQ(t *testing.T) {
	event := orderEvent(t, enums.EventOrderFulfilled, 1)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{event}}
	dlq := &stubDLQRepo{}
	svc := serviceUnderTest(t, testDeps{
		repo:     repo,
		pub:      &scriptedPublisher{results: []publishResult{scriptedResult{err: errors.New("transient")}}},
		resolver: &stubResolver{resolved: resolvedOrder(&payloads.OrderFulfilledEvent{})},
		dlq:      dlq,
		outbox:   &config.OutboxConfig{BatchSize: 1, PollIntervalMS: 100, MaxAttempts: 2},
	})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, dlq.entries, 1)
	assert.Equal(t, event.ID, dlq.entries[0].EventID)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq.entries[0].ErrorReason)
}

func TestEmptyBatchReportsIdle(t *testing.T) {
	svc := serviceUnderTest(t, testDeps{
		repo:     &stubOutboxRepo{},
		pub:      &scriptedPublisher{},
		resolver: &stubResolver{},
	})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	current := base
	for range 10 {
		current = nextBackoff(current, base, maxBackoff)
	}
	assert.Equal(t, maxBackoff, current)
}

type testDeps struct {
	repo     outboxRepository
	pub      publisher
	resolver registryResolver
	dlq      dlqRepository
	outbox   *config.OutboxConfig
}

func serviceUnderTest(t *testing.T, deps testDeps) *Service {
	t.Helper()

	outboxCfg := config.OutboxConfig{BatchSize: 2, PollIntervalMS: 100, MaxAttempts: 5}
	if deps.outbox != nil {
		outboxCfg = *deps.outbox
	}
	if deps.dlq == nil {
		deps.dlq = &stubDLQRepo{}
	}

	svc, err := NewService(ServiceParams{
		Config:           &config.Config{Outbox: outboxCfg},
		Logger:           logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:               &stubDB{},
		PubSub:           &stubPubSubClient{},
		Repository:       deps.repo,
		DLQRepository:    deps.dlq,
		Registry:         deps.resolver,
		PublisherFactory: func(_ string) publisher { return deps.pub },
	})
	require.NoError(t, err)
	return svc
}

func orderEvent(t *testing.T, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(t, uuid.NewString()),
		AttemptCount:  attempts,
	}
}

func resolvedOrder(payload any) *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "order-events-topic",
			AggregateType: enums.AggregateOrder,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: payload,
	}
}

func envelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	})
	require.NoError(tb, err)
	return payload
}

type stubOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (s *stubOutboxRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return s.events, nil
}

func (s *stubOutboxRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutboxRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubOutboxRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	s.terminal = append(s.terminal, id)
	return nil
}

type stubDB struct{}

func (stubDB) Ping(context.Context) error { return nil }

func (stubDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error { return fn(nil) }

type stubPubSubClient struct{}

func (stubPubSubClient) Ping(context.Context) error { return nil }

func (stubPubSubClient) Publisher(string) *gcppubsub.Publisher { return nil }

type scriptedPublisher struct {
	results []publishResult
}

func (s *scriptedPublisher) Publish(context.Context, *gcppubsub.Message) publishResult {
	if len(s.results) == 0 {
		return nil
	}
	next := s.results[0]
	s.results = s.results[1:]
	return next
}

type scriptedResult struct {
	err error
}

func (s scriptedResult) Get(context.Context) (string, error) { return "", s.err }

type stubResolver struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (s *stubResolver) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if s.resolved == nil {
		return nil, s.err
	}
	resolved := *s.resolved
	resolved.Descriptor.AggregateType = event.AggregateType
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, s.err
}

type stubDLQRepo struct {
	entries []models.OutboxDLQ
}

func (s *stubDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	s.entries = append(s.entries, entry)
	return nil
}
