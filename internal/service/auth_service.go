package service

import (
	"errors"
	"fmt"

	"socialnet/internal/logger"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	RefreshToken(refreshToken string) (*AuthResponse, error)
	GetMe(userID string) (*model.User, error)
	GetUserByID(userID string) (*model.User, error)
	SearchUsers(requesterID, keyword string, limit, offset int) ([]*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"max=255"`
	Password        string `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user and signs them in
func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, &ValidationError{Field: "email", Message: "email is already registered"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, &ValidationError{Field: "username", Message: "username is already taken"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return s.issueTokens(user)
}

// Login authenticates by email and password
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *authService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userID, err := util.ValidateRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, errors.New("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.New("user no longer exists")
	}

	return s.issueTokens(user)
}

// GetMe returns the authenticated user's record
func (s *authService) GetMe(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}
	return user, nil
}

// GetUserByID returns a user's public record
func (s *authService) GetUserByID(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}
	return user, nil
}

// SearchUsers matches username and full name by substring. The requester is
// never part of their own results.
func (s *authService) SearchUsers(requesterID, keyword string, limit, offset int) ([]*model.User, error) {
	users, err := s.userRepo.Search(keyword, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	filtered := users[:0]
	for _, user := range users {
		if user.ID != requesterID {
			filtered = append(filtered, user)
		}
	}
	return filtered, nil
}

func (s *authService) issueTokens(user *model.User) (*AuthResponse, error) {
	accessToken, err := util.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := util.GenerateRefreshToken(user.ID, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
