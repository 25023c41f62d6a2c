package service

import (
	"context"
	"errors"
	"strings"
	"time"

	userserrors "spacelink/internal/users/errors"
	"spacelink/internal/users/repository"
	"spacelink/internal/users/validator"
	"spacelink/pkg/auth"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/model"
	"spacelink/pkg/sanitizer"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.Profile, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *auth.TokenManager
	cfg       *config.Config
	now       func() time.Time
	hashCost  int
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	tokens *auth.TokenManager,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
		now:       time.Now,
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Name = sanitizer.NormalizeText(req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	now := s.now().UTC()
	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "email", user.Email)
	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login rejected", "email", req.Email)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return s.authResponse(user)
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.Profile, error) {
	sanitizeUpdate(updates)
	if err := s.validator.Validate(updates); err != nil {
		return nil, validationError(err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.Phone != nil {
		user.Phone = *updates.Phone
	}
	if updates.Address != nil {
		user.Address = *updates.Address
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		s.cfg.Log.Error("Failed to update user profile", "id", userID, "error", err)
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	s.cfg.Log.Info("User profile updated",
		"id", userID,
		"profile_complete", user.ProfileComplete(),
	)
	return profile(user), nil
}

func (s *userService) findUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.NotFound("User")
		}
		s.cfg.Log.Error("Failed to get user", "id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *userService) authResponse(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      profile(user),
	}, nil
}

func profile(user *model.User) *model.Profile {
	return &model.Profile{User: user, ProfileComplete: user.ProfileComplete()}
}

// sanitizeUpdate leaves an unparseable phone untouched so validation can
// reject it instead of silently clearing the field.
func sanitizeUpdate(updates *model.ProfileUpdate) {
	if updates.Name != nil {
		*updates.Name = sanitizer.NormalizeText(*updates.Name)
	}
	if updates.Phone != nil {
		raw := strings.TrimSpace(*updates.Phone)
		if normalized := sanitizer.NormalizePhone(raw); normalized != "" {
			raw = normalized
		}
		*updates.Phone = raw
	}
	if updates.Address != nil {
		*updates.Address = sanitizer.NormalizeText(*updates.Address)
	}
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation("Validation failed", errs.Details())
	}
	return apperrors.Validation("Validation failed", map[string]any{"error": err.Error()})
}
