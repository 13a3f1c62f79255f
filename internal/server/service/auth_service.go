package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by an access token
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	IsStaff  bool   `json:"staff"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users     UserStore
	events    AuthEventLogger
	jwtSecret string
	jwtExpire time.Duration
	now       Clock
}

func NewAuthService(users UserStore, events AuthEventLogger, secret string, expire time.Duration, now Clock) *AuthService {
	if events == nil {
		events = NopAuthEventLogger{}
	}
	return &AuthService{
		users:     users,
		events:    events,
		jwtSecret: secret,
		jwtExpire: expire,
		now:       now,
	}
}

// Register handles user registration
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	// a concurrent registration can pass the Exists check and lose at the index
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUserAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, clientIP string) (*models.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		s.events.LoginFailed(ctx, req.Username, clientIP)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.events.LoginFailed(ctx, req.Username, clientIP)
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	s.events.LoginSucceeded(ctx, user.Username, clientIP)

	return &models.LoginResponse{
		Token: token,
		User:  ToUserResponse(user),
	}, nil
}

// Logout only records the event; tokens are stateless.
func (s *AuthService) Logout(ctx context.Context, username, clientIP string) {
	s.events.LoggedOut(ctx, username, clientIP)
}

// IssueToken signs an HS256 access token for user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// ParseToken validates an access token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func ToUserResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt,
	}
}
