package auth

import "github.com/charlesng35/memberhub/internal/models"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID  uint
	Email   string
	IsAdmin bool
}

// PrincipalFromUser builds a principal from a freshly loaded user record.
func PrincipalFromUser(user *models.User) *Principal {
	if user == nil {
		return nil
	}
	return &Principal{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

// CanAccessUser reports whether the principal may act on the user with id.
func (p *Principal) CanAccessUser(id uint) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin || p.UserID == id
}
