package users

import (
	"errors"
	"fmt"
	"strings"
)

// Role controls which API surface a user can reach.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("users: unknown role %q", raw)
	}
}

// User is the persisted account record. PasswordHash never leaves the
// store layer; handlers serialize the Public view instead.
type User struct {
	ID           string `dynamodbav:"id" json:"id"`
	Email        string `dynamodbav:"email" json:"email"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
	FullName     string `dynamodbav:"fullName" json:"full_name"`
	Role         Role   `dynamodbav:"role" json:"role"`
	Specialty    string `dynamodbav:"specialty,omitempty" json:"specialty,omitempty"`
	Phone        string `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Bio          string `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt" json:"created_at"`
}

// Public is the wire representation of a user, without credentials.
type Public struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Public strips credential material for API responses.
func (u *User) Public() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Specialty: u.Specialty,
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// Validate checks the invariants a record must satisfy before persisting.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("users: email required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("users: invalid email %q", u.Email)
	}
	if u.FullName == "" {
		return errors.New("users: full name required")
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	if u.Role == RoleDoctor && u.Specialty == "" {
		return errors.New("users: doctors require a specialty")
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
