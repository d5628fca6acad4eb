package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/pkg/logger"
	"github.com/charlesng35/memberhub/pkg/mail"
	"github.com/charlesng35/memberhub/pkg/metrics"
)

// notifyDecision publishes the decision event and emails the applicant.
// Failures are logged and never surface to the caller.
func (s *IntentionService) notifyDecision(ctx context.Context, intention *models.MembershipIntention) {
	log := logger.WithModule("intentions").With(
		zap.Uint("intention_id", intention.ID),
		zap.String("status", string(intention.Status)),
	)

	event := events.NewIntentionEvent(intention, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.NotificationFailures.WithLabelValues("event").Inc()
		log.Warn("failed to publish intention event", zap.Error(err))
	}

	if s.mailer == nil {
		return
	}

	message := s.decisionMessage(intention)
	if err := s.mailer.Send(ctx, message); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			return
		}
		metrics.NotificationFailures.WithLabelValues("email").Inc()
		log.Warn("failed to send decision email", zap.Error(err))
	}
}

func (s *IntentionService) decisionMessage(intention *models.MembershipIntention) mail.Message {
	if intention.Status == models.IntentionApproved && intention.Token != nil {
		link := s.ApprovalLink(*intention.Token)
		return mail.Message{
			To:      []string{intention.Email},
			Subject: "Your membership application was approved",
			Body: fmt.Sprintf("Hello %s,\n\nYour membership application has been approved. "+
				"Use the following link to complete your membership:\n%s\n\n"+
				"The link can only be used by you. Do not share it.\n", intention.FullName, link),
		}
	}

	return mail.Message{
		To:      []string{intention.Email},
		Subject: "Your membership application",
		Body: fmt.Sprintf("Hello %s,\n\nThank you for your interest. "+
			"Unfortunately your membership application was not approved.\n", intention.FullName),
	}
}
