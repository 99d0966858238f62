package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the signed claim set carried by access tokens: identity and role.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
