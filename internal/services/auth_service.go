package services

import (
	"context"
	"fmt"
	"time"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService handles signup, login and token validation. It is a thin
// collaborator of the bidding core: the core only ever sees the opaque user
// id a valid token resolves to.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionStore
	secret   []byte
	tokenTTL time.Duration
	log      logger.Logger
}

func NewAuthService(users domain.UserRepository, sessions domain.SessionStore, secret string, tokenTTL time.Duration, log logger.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return fmt.Errorf("%w: email, username and password are required", domain.ErrInvalidInput)
	}
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}

	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return err
	}

	s.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.SaveSession(ctx, user.ID, token); err != nil {
			s.log.Error("Failed to record session", "user_id", user.ID, "error", err)
		}
	}

	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// CurrentUserID validates an access token and returns the subject user id.
func (s *AuthService) CurrentUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", domain.ErrUnauthorized
	}
	return subject, nil
}

func (s *AuthService) mintToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
