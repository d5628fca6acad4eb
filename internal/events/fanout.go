package events

import (
	"context"

	"go.uber.org/multierr"
)

type fanout []Publisher

// Fanout delivers each event to every non-nil publisher. A failing publisher
// does not stop delivery to the rest; errors are combined.
func Fanout(publishers ...Publisher) Publisher {
	var targets fanout
	for _, p := range publishers {
		if p != nil {
			targets = append(targets, p)
		}
	}
	switch len(targets) {
	case 0:
		return NoopPublisher{}
	case 1:
		return targets[0]
	}
	return targets
}

func (f fanout) Publish(ctx context.Context, event IntentionEvent) error {
	var errs error
	for _, p := range f {
		errs = multierr.Append(errs, p.Publish(ctx, event))
	}
	return errs
}

func (f fanout) Close() error {
	var errs error
	for _, p := range f {
		errs = multierr.Append(errs, p.Close())
	}
	return errs
}
