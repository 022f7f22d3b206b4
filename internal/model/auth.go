package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims issued by the identity provider.
// The user ID travels in the registered "sub" claim.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// User is the authenticated principal attached to a request
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"` // Unix seconds, from "iat"
}

// LoginRequest is the request body for development login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
