package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAdvisor UserRole = "ADVISOR"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens. Tokens are issued elsewhere.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// CanActFor reports whether the caller may read or write data for studentID.
// Advisors and admins act for anyone; students only for themselves.
func (c *JWTClaims) CanActFor(studentID string) bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case RoleAdmin, RoleAdvisor:
		return true
	case RoleStudent:
		return studentID != "" && studentID == c.UserID
	default:
		return false
	}
}
