package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/memberhub/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserEmailTaken indicates another account already uses the email address.
	ErrUserEmailTaken = apperrors.New("USER_EMAIL_TAKEN", "Email is already registered", http.StatusConflict)

	// ErrIntentionNotFound indicates the requested intention does not exist.
	ErrIntentionNotFound = apperrors.New("INTENTION_NOT_FOUND", "Membership intention not found", http.StatusNotFound)
	// ErrIntentionTokenInvalid covers unknown and malformed approval tokens alike.
	ErrIntentionTokenInvalid = apperrors.New("INTENTION_NOT_FOUND", "Invalid or expired token", http.StatusNotFound)
	// ErrIntentionAlreadyDecided signals an approve/reject on an intention that is no longer pending.
	ErrIntentionAlreadyDecided = apperrors.New("INTENTION_ALREADY_DECIDED", "Membership intention has already been decided", http.StatusConflict)
	// ErrGroupRequired is returned when a non-admin lists intentions without a group scope.
	ErrGroupRequired = apperrors.NewBadRequest("group id is required for non-admin users")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
