package model

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Staff     *Staff `json:"staff"`
}

// Claims carried by the access token. ClinicID is the tenant boundary the
// auth middleware injects into every request context.
type Claims struct {
	StaffID  uuid.UUID `json:"staff_id"`
	ClinicID uuid.UUID `json:"clinic_id"`
	Role     StaffRole `json:"role"`
	jwt.RegisteredClaims
}
