package model

import "time"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// AuthUser is the sign-in identity; Profile carries the application role.
type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Profile struct {
	ID      string
	Email   string
	Role    string
	ClassID *string
}

type UserListItem struct {
	ID        string
	Email     string
	Role      string
	ClassID   *string
	ClassName *string
}

type Teacher struct {
	ID    string
	Name  string
	Email string
}

type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent *string
	IPAddress *string
}
