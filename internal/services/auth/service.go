package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordcraft/internal/dependencies/clock"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/storage"
)

// Errors
var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Service is the credential store: it creates and verifies player
// credentials and issues signed reconnect tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
}

// Config holds configuration for the auth service
type Config struct {
	// TokenSecret signs reconnect tokens (HS256)
	TokenSecret []byte
	// TokenTTL is how long an issued token stays valid
	TokenTTL time.Duration
	// MinPasswordLength is checked before storage is touched
	MinPasswordLength int
	// BcryptCost is the work factor for password hashes
	BcryptCost int
	// AdminUsernames register with the admin role
	AdminUsernames []string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL:          24 * time.Hour,
		MinPasswordLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaults.MinPasswordLength
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	admins := make([]string, 0, len(cfg.AdminUsernames))
	for _, name := range cfg.AdminUsernames {
		admins = append(admins, model.CanonicalUsername(name))
	}
	cfg.AdminUsernames = admins
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
	}
}

// MinPasswordLength is the shortest password Register accepts
func (s *Service) MinPasswordLength() int {
	return s.cfg.MinPasswordLength
}

// ValidateUsername checks the username shape
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// Register validates and creates a new player at the world origin
func (s *Service) Register(ctx context.Context, username, password string) (*model.Player, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if len(password) < s.cfg.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	canonical := model.CanonicalUsername(username)
	role := model.RolePlayer
	if slices.Contains(s.cfg.AdminUsernames, canonical) {
		role = model.RoleAdmin
	}

	player := &model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		Username:     canonical,
		DisplayName:  username,
		PasswordHash: string(hash),
		Location:     model.Origin,
		Inventory:    []model.Item{},
		Role:         role,
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// Verify checks a username and password against stored credentials
func (s *Service) Verify(ctx context.Context, username, password string) (*model.Player, error) {
	player, err := s.storage.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	if player.Banned {
		return nil, model.ErrBanned
	}
	return player, nil
}

// IssueToken signs a time-limited token whose subject is the player id
func (s *Service) IssueToken(playerID model.PlayerID) (string, error) {
	if len(s.cfg.TokenSecret) == 0 {
		return "", errors.New("token secret not configured")
	}
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(playerID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.TokenSecret)
}

// ValidateToken verifies a token and returns the player id it was issued to
func (s *Service) ValidateToken(token string) (model.PlayerID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.cfg.TokenSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return model.PlayerID(claims.Subject), nil
}
