package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/pkg/crypto"
	apperrors "github.com/charlesng35/memberhub/pkg/errors"
	"github.com/charlesng35/memberhub/pkg/mail"
	"github.com/charlesng35/memberhub/pkg/metrics"
)

const (
	// approvalTokenBytes yields 64 hex characters.
	approvalTokenBytes    = 32
	maxTokenAttempts      = 3
	defaultPhoneRegion    = "US"
	intentionTokenPathFmt = "%s/intentios/by-token/%s"
)

// CreateIntentionInput describes a new membership application.
type CreateIntentionInput struct {
	FullName string
	Email    string
	Phone    *string
	Company  *string
	Position *string
	GroupID  uint
}

// UpdateIntentionInput enumerates editable applicant fields. Nil fields are
// left untouched; an empty string clears an optional field.
type UpdateIntentionInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Company  *string
	Position *string
	GroupID  *uint
}

// IntentionOption customises IntentionService behaviour.
type IntentionOption func(*IntentionService)

// WithIntentionMailer sends the applicant an email when a decision is taken.
func WithIntentionMailer(mailer mail.Mailer) IntentionOption {
	return func(s *IntentionService) {
		s.mailer = mailer
	}
}

// WithIntentionPublisher emits decision events through publisher.
func WithIntentionPublisher(publisher events.Publisher) IntentionOption {
	return func(s *IntentionService) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithIntentionBaseURL configures the public URL used in approval links.
func WithIntentionBaseURL(url string) IntentionOption {
	return func(s *IntentionService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// WithIntentionPhoneRegion sets the region assumed for phone numbers without a country code.
func WithIntentionPhoneRegion(region string) IntentionOption {
	return func(s *IntentionService) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			s.phoneRegion = region
		}
	}
}

// WithIntentionAudit records workflow actions in the audit trail.
func WithIntentionAudit(audit *AuditService) IntentionOption {
	return func(s *IntentionService) {
		s.auditService = audit
	}
}

// WithIntentionClock injects a custom clock primarily for testing.
func WithIntentionClock(clock func() time.Time) IntentionOption {
	return func(s *IntentionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IntentionService drives the membership intention workflow.
type IntentionService struct {
	db           *gorm.DB
	auditService *AuditService
	mailer       mail.Mailer
	publisher    events.Publisher
	baseURL      string
	phoneRegion  string
	now          func() time.Time
	newToken     func() (string, error)
}

// NewIntentionService constructs an IntentionService with the provided dependencies.
func NewIntentionService(db *gorm.DB, opts ...IntentionOption) (*IntentionService, error) {
	if db == nil {
		return nil, errors.New("intention service: db is required")
	}

	svc := &IntentionService{
		db:          db,
		publisher:   events.NoopPublisher{},
		phoneRegion: defaultPhoneRegion,
		now:         time.Now,
		newToken: func() (string, error) {
			return crypto.GenerateHexToken(approvalTokenBytes)
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create stores a new pending intention without a token.
func (s *IntentionService) Create(ctx context.Context, input CreateIntentionInput) (*models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	fullName := strings.TrimSpace(input.FullName)
	email := models.NormaliseEmail(input.Email)
	if fullName == "" {
		return nil, apperrors.NewBadRequest("full name is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if input.GroupID == 0 {
		return nil, apperrors.NewBadRequest("group id is required")
	}

	phone, err := s.normalisePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	intention := &models.MembershipIntention{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Company:  optionalString(input.Company),
		Position: optionalString(input.Position),
		GroupID:  input.GroupID,
		Status:   models.IntentionPending,
	}

	if err := s.db.WithContext(ctx).Create(intention).Error; err != nil {
		return nil, fmt.Errorf("intention service: create intention: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Email:    email,
		Action:   "intention.create",
		Resource: intentionResource(intention.ID),
		Result:   auditResultSuccess,
		Metadata: map[string]any{"group_id": intention.GroupID},
	})
	return intention, nil
}

// List returns intentions newest first. Non-admin callers must scope the query to a group.
func (s *IntentionService) List(ctx context.Context, groupID *uint, isAdmin bool) ([]models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	if groupID == nil && !isAdmin {
		return nil, ErrGroupRequired
	}

	query := s.db.WithContext(ctx).Model(&models.MembershipIntention{})
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var intentions []models.MembershipIntention
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Find(&intentions).Error; err != nil {
		return nil, fmt.Errorf("intention service: list intentions: %w", err)
	}
	return intentions, nil
}

// GetByID loads an intention by identifier.
func (s *IntentionService) GetByID(ctx context.Context, id uint) (*models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	var intention models.MembershipIntention
	err := s.db.WithContext(ctx).First(&intention, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("intention service: get intention: %w", err)
	}
	return &intention, nil
}

// GetByToken resolves an approval token. Unknown and empty tokens fail alike.
func (s *IntentionService) GetByToken(ctx context.Context, token string) (*models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrIntentionTokenInvalid
	}

	var intention models.MembershipIntention
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&intention).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("intention service: get intention by token: %w", err)
	}
	return &intention, nil
}

// Approve moves a pending intention to approved and issues a fresh token.
func (s *IntentionService) Approve(ctx context.Context, id uint) (*models.MembershipIntention, error) {
	return s.decide(ctx, id, models.IntentionApproved)
}

// Reject moves a pending intention to rejected. No token is ever left on a
// rejected intention.
func (s *IntentionService) Reject(ctx context.Context, id uint) (*models.MembershipIntention, error) {
	return s.decide(ctx, id, models.IntentionRejected)
}

func (s *IntentionService) decide(ctx context.Context, id uint, next models.IntentionStatus) (*models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, ErrIntentionAlreadyDecided
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("intention service: cannot move %s intention to %s", current.Status, next)
	}

	decidedAt := s.now()
	for attempt := 1; ; attempt++ {
		updates := map[string]any{
			"status":     next,
			"token":      nil,
			"decided_at": decidedAt,
		}
		if next == models.IntentionApproved {
			token, err := s.newToken()
			if err != nil {
				return nil, fmt.Errorf("intention service: generate token: %w", err)
			}
			updates["token"] = token
		}

		result := s.db.WithContext(ctx).
			Model(&models.MembershipIntention{}).
			Where("id = ? AND status = ?", id, models.IntentionPending).
			Updates(updates)
		if result.Error != nil {
			if isUniqueConstraintError(result.Error) && attempt < maxTokenAttempts {
				continue
			}
			return nil, fmt.Errorf("intention service: %s intention: %w", decisionVerb(next), result.Error)
		}
		if result.RowsAffected == 0 {
			// Another caller decided first, or the row vanished.
			latest, err := s.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if !latest.Status.Terminal() {
				return nil, fmt.Errorf("intention service: %s intention: status unchanged", decisionVerb(next))
			}
			return nil, ErrIntentionAlreadyDecided
		}
		break
	}

	decided, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.IntentionDecisions.WithLabelValues(string(next)).Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "intention." + decisionVerb(next),
		Resource: intentionResource(decided.ID),
		Result:   auditResultSuccess,
		Metadata: map[string]any{
			"group_id": decided.GroupID,
			"email":    decided.Email,
		},
	})
	s.notifyDecision(ctx, decided)

	return decided, nil
}

// Update edits applicant fields. Status and token are never touched here.
func (s *IntentionService) Update(ctx context.Context, id uint, input UpdateIntentionInput) (*models.MembershipIntention, error) {
	ctx = ensureContext(ctx)

	intention, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if fullName == "" {
			return nil, apperrors.NewBadRequest("full name cannot be empty")
		}
		updates["full_name"] = fullName
	}
	if input.Email != nil {
		email := models.NormaliseEmail(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be empty")
		}
		updates["email"] = email
	}
	if input.Phone != nil {
		phone, err := s.normalisePhone(input.Phone)
		if err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if input.Company != nil {
		updates["company"] = optionalString(input.Company)
	}
	if input.Position != nil {
		updates["position"] = optionalString(input.Position)
	}
	if input.GroupID != nil {
		if *input.GroupID == 0 {
			return nil, apperrors.NewBadRequest("group id cannot be zero")
		}
		updates["group_id"] = *input.GroupID
	}

	if len(updates) == 0 {
		return intention, nil
	}

	if err := s.db.WithContext(ctx).Model(intention).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("intention service: update intention: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "intention.update",
		Resource: intentionResource(id),
		Result:   auditResultSuccess,
	})
	return s.GetByID(ctx, id)
}

// Delete removes an intention permanently.
func (s *IntentionService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.MembershipIntention{}, id)
	if result.Error != nil {
		return fmt.Errorf("intention service: delete intention: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrIntentionNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "intention.delete",
		Resource: intentionResource(id),
		Result:   auditResultSuccess,
	})
	return nil
}

// ApprovalLink returns the public link for an approval token.
func (s *IntentionService) ApprovalLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf(intentionTokenPathFmt, s.baseURL, token)
}

// normalisePhone converts a phone number to E.164. Blank input clears the field.
func (s *IntentionService) normalisePhone(raw *string) (*string, error) {
	value := optionalString(raw)
	if value == nil {
		return nil, nil
	}

	parsed, err := phonenumbers.Parse(*value, s.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return nil, apperrors.NewBadRequest("phone must be a valid phone number")
	}

	formatted := phonenumbers.Format(parsed, phonenumbers.E164)
	return &formatted, nil
}

func intentionResource(id uint) string {
	return "intention:" + strconv.FormatUint(uint64(id), 10)
}

func decisionVerb(status models.IntentionStatus) string {
	if status == models.IntentionApproved {
		return "approve"
	}
	return "reject"
}
