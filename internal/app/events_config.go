package app

import (
	"strings"

	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/services"
)

// AMQPPublisherConfig converts EventsConfig to the events package representation.
func (c EventsConfig) AMQPPublisherConfig() events.AMQPConfig {
	queue := strings.TrimSpace(c.AMQP.Queue)
	if queue == "" {
		queue = events.DefaultQueue
	}
	return events.AMQPConfig{
		URL:      strings.TrimSpace(c.AMQP.URL),
		Exchange: strings.TrimSpace(c.AMQP.Exchange),
		Queue:    queue,
	}
}

// IntentionServiceOptions converts workflow settings into IntentionService options.
func (c IntentionsConfig) IntentionServiceOptions() []services.IntentionOption {
	return []services.IntentionOption{
		services.WithIntentionBaseURL(c.PublicBaseURL),
		services.WithIntentionPhoneRegion(c.PhoneRegion),
	}
}
