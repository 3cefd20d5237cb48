package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user. The field
// names carry a leading underscore on the wire.
type LoginRequest struct {
	Username string `json:"_username"`
	Password string `json:"_password"`
}

// TokenResponse returns the issued token; the same value travels in the
// X-Token response header.
type TokenResponse struct {
	Token string `json:"token"`
}

// JWTClaims is the typed principal embedded in access tokens.
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}
