package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleBusiness Role = "business"
)

// ParseRole maps a raw role string onto the closed role set. An empty value
// defaults to student; anything else unknown is rejected.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case "":
		return RoleStudent, nil
	case RoleStudent, RoleTeacher, RoleBusiness:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// DashboardView returns the view name rendered for this role. Unknown roles
// return false rather than falling through to a default view.
func (r Role) DashboardView() (string, bool) {
	switch r {
	case RoleStudent:
		return "student_dashboard", true
	case RoleTeacher:
		return "teacher_dashboard", true
	case RoleBusiness:
		return "business_dashboard", true
	}
	return "", false
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity is the resolved (user id, session id) pair for the current
// request, derived from a verified session token. It is threaded through
// handler calls explicitly; there is no process-wide current user.
type Identity struct {
	UserID    string
	SessionID string
}
