package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/pkg/crypto"
	apperrors "github.com/charlesng35/memberhub/pkg/errors"
)

// CreateUserInput describes the fields accepted when creating a user.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	IsAdmin  bool
	IsMember bool
}

// UpdateUserInput enumerates mutable user attributes. Nil fields are left untouched.
type UpdateUserInput struct {
	FullName *string
	Email    *string
	IsAdmin  *bool
	IsMember *bool
}

// UserService manages the user directory.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, auditService *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create provisions a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	fullName := strings.TrimSpace(input.FullName)
	email := models.NormaliseEmail(input.Email)
	if fullName == "" {
		return nil, apperrors.NewBadRequest("full name is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	if _, found, err := s.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if found {
		return nil, ErrUserEmailTaken
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, apperrors.NewBadRequest("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      input.IsAdmin,
		IsMember:     input.IsMember,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.create",
		Resource: userResource(user.ID),
		Result:   auditResultSuccess,
		Metadata: map[string]any{
			"email":     user.Email,
			"is_admin":  user.IsAdmin,
			"is_member": user.IsMember,
		},
	})

	return user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// FindByEmail looks a user up by email. Absence is reported through the bool
// rather than as an error.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	ctx = ensureContext(ctx)

	email = models.NormaliseEmail(email)
	if email == "" {
		return nil, false, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("user service: find by email: %w", err)
	}
	return &user, true, nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Update persists the provided subset of mutable attributes for an existing user.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
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
		if email != user.Email {
			existing, found, err := s.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if found && existing.ID != user.ID {
				return nil, ErrUserEmailTaken
			}
			updates["email"] = email
		}
	}
	if input.IsAdmin != nil {
		updates["is_admin"] = *input.IsAdmin
	}
	if input.IsMember != nil {
		updates["is_member"] = *input.IsMember
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserEmailTaken
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.update",
		Resource: userResource(user.ID),
		Result:   auditResultSuccess,
		Metadata: map[string]any{"fields": updatedFields(updates)},
	})

	return s.GetByID(ctx, id)
}

// Delete removes a user permanently.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("user service: delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.delete",
		Resource: userResource(id),
		Result:   auditResultSuccess,
	})
	return nil
}

// EnsureAdmin creates an administrator with the given credentials unless the
// email is already registered. The bool reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, input CreateUserInput) (*models.User, bool, error) {
	ctx = ensureContext(ctx)

	existing, found, err := s.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, false, err
	}
	if found {
		return existing, false, nil
	}

	input.IsAdmin = true
	input.IsMember = true
	user, err := s.Create(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func userResource(id uint) string {
	return "user:" + strconv.FormatUint(uint64(id), 10)
}

func updatedFields(updates map[string]any) []string {
	fields := make([]string, 0, len(updates))
	for _, key := range []string{"full_name", "email", "is_admin", "is_member"} {
		if _, ok := updates[key]; ok {
			fields = append(fields, key)
		}
	}
	return fields
}
