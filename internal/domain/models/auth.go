package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims accepted by the API
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
