package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, IntentionEvent) error { return p.err }

func (p failingPublisher) Close() error { return p.err }

func TestFanoutDeliversToEveryPublisher(t *testing.T) {
	first := &Recorder{}
	second := &Recorder{}
	broken := failingPublisher{err: errors.New("broker down")}

	pub := Fanout(first, nil, broken, second)
	event := IntentionEvent{Type: TypeIntentionApproved, IntentionID: 7, OccurredAt: time.Now()}

	err := pub.Publish(context.Background(), event)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	require.Len(t, first.Events(), 1)
	require.Len(t, second.Events(), 1)
	require.Equal(t, uint(7), second.Events()[0].IntentionID)

	require.EqualError(t, pub.Close(), "broker down")
}

func TestFanoutCollapses(t *testing.T) {
	require.IsType(t, NoopPublisher{}, Fanout())
	require.IsType(t, NoopPublisher{}, Fanout(nil))

	rec := &Recorder{}
	require.Same(t, rec, Fanout(rec))
}
