package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/security"
)

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Service struct {
	staffRepo repository.StaffRepository
	config    Config
	now       func() time.Time
}

func NewService(staffRepo repository.StaffRepository, config Config) *Service {
	if config.TokenTTL == 0 {
		config.TokenTTL = 12 * time.Hour
	}
	return &Service{staffRepo: staffRepo, config: config, now: time.Now}
}

// Login exchanges credentials for an access token. Terminated staff cannot
// log in regardless of password.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	member, err := s.staffRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if !security.CheckPassword(req.Password, member.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if member.Status == model.StaffStatusTerminated {
		return nil, apperrors.Unauthorized("account is disabled")
	}

	token, err := s.issueToken(member)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.config.TokenTTL.Seconds()),
		Staff:     member,
	}, nil
}

func (s *Service) issueToken(member *model.Staff) (string, error) {
	now := s.now()
	claims := &model.Claims{
		StaffID:  member.ID,
		ClinicID: member.ClinicID,
		Role:     member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*model.Claims, error) {
	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}
