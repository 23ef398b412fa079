package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decidedEvent(t *testing.T) events.TransactionDecided {
	t.Helper()
	tx, err := transaction.New().
		WithSenderBankAccount("HDFC").
		WithDepositAccount("ICICI").
		WithUTRNumber("UTR123").
		WithSubmittedBy(uuid.New()).
		Build()
	require.NoError(t, err)
	require.NoError(t, tx.Decide(transaction.StatusApproved, "ok", uuid.New(), time.Now()))
	return events.TransactionDecided{Transaction: *tx, OccurredAt: time.Now().UTC()}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	evt := decidedEvent(t)
	raw, err := encodeEnvelope(evt)
	require.NoError(t, err)

	decoded, err := decodeEnvelope(map[string]any{"event": string(raw)}, events.EventTypes)
	require.NoError(t, err)
	got, ok := decoded.(*events.TransactionDecided)
	require.True(t, ok)
	assert.Equal(t, evt.Transaction.ID, got.Transaction.ID)
	assert.Equal(t, transaction.StatusApproved, got.Transaction.Status)
	assert.Equal(t, events.EventTypeTransactionDecided.String(), got.Type())
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	_, err := decodeEnvelope(map[string]any{}, events.EventTypes)
	assert.Error(t, err)

	_, err = decodeEnvelope(map[string]any{"event": "{not json"}, events.EventTypes)
	assert.Error(t, err)

	_, err = decodeEnvelope(map[string]any{"event": `{"type":"Unknown","payload":{}}`}, events.EventTypes)
	assert.Error(t, err)
}

func TestRedisEventBus_HandleRoutesByType(t *testing.T) {
	bus := newRedisEventBus(nil, "finsova:events", "audit", "test", events.EventTypes, discardLogger())
	var seen []string
	bus.mu.Lock()
	bus.handlers[events.EventTypeTransactionDecided.String()] = append(bus.handlers[events.EventTypeTransactionDecided.String()],
		func(_ context.Context, e events.Event) error {
			seen = append(seen, e.Type())
			return nil
		})
	bus.handlers[events.EventTypeUserRegistered.String()] = append(bus.handlers[events.EventTypeUserRegistered.String()],
		func(context.Context, events.Event) error { return errors.New("boom") })
	bus.mu.Unlock()

	raw, err := encodeEnvelope(decidedEvent(t))
	require.NoError(t, err)
	require.NoError(t, bus.handle(context.Background(), map[string]any{"event": string(raw)}))
	assert.Equal(t, []string{events.EventTypeTransactionDecided.String()}, seen)

	raw, err = encodeEnvelope(events.UserRegistered{Username: "jdoe"})
	require.NoError(t, err)
	assert.Error(t, bus.handle(context.Background(), map[string]any{"event": string(raw)}))
	assert.Equal(t, "finsova:events-DLQ", dlqStreamName("finsova:events"))
}
