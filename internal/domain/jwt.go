package domain

import "github.com/golang-jwt/jwt/v5"

// KitchenClaims are the JWT claims issued at login.
type KitchenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
