package auth

import (
	"context"
	"errors"
	"fmt"
	"time"


	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/audit"
	"github.com/mzansicare/booking-api/pkg/auth"
	"github.com/mzansicare/booking-api/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	auditor  *audit.Service
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		auditor:  auditor,
	}
}

// Register creates a user in the patient role, scoped to their district.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	district := model.District(req.District)
	if !district.Valid() {
		return nil, fmt.Errorf("unknown district %q", req.District)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		District:     district,
		Status:       model.UserStatusActive,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	user.Base = model.NewBase(now)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, model.RolePatient); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	user.Password = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, model.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	roles, err := s.userRepo.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	tokens, err := s.generateTokens(user, roles)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, user.ID, user.District, model.AuditActionLogin, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"email": user.Email},
	})

	return tokens, nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, model.ErrInvalidCredentials
	}

	roles, err := s.userRepo.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	return s.generateTokens(user, roles)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	return s.jwtSvc.ValidateToken(token)
}

func (s *Service) generateTokens(user *model.User, roles model.RoleList) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
