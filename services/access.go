package services

import "public-complaint-api/models"

// Actor is the authenticated requester, resolved once per request.
type Actor struct {
	UserID uint
	Role   string
}

// Guest is the zero actor used on public routes.
var Guest = Actor{}

func (a Actor) Authenticated() bool { return a.UserID != 0 }

func (a Actor) IsAdmin() bool { return a.Authenticated() && a.Role == models.RoleAdmin }

// RequireUser fails for anonymous callers.
func RequireUser(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin guards catalog mutation and complaint status changes.
func RequireAdmin(a Actor) error {
	if err := RequireUser(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanViewComplaint allows administrators and the complaint's owner.
func CanViewComplaint(a Actor, c *models.Complaint) error {
	if err := RequireUser(a); err != nil {
		return err
	}
	if a.IsAdmin() || c.UserID == a.UserID {
		return nil
	}
	return ErrForbidden
}
