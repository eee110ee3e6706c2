package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chatline/internal/cache"
	"chatline/internal/models"
	"chatline/pkg/jwt"
)

const minPasswordEntropy = 60

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type Service struct {
	db       *gorm.DB
	tokens   *jwt.JWT
	presence *cache.PresenceCache
}

func NewService(db *gorm.DB, tokens *jwt.JWT, presence *cache.PresenceCache) *Service {
	return &Service{db: db, tokens: tokens, presence: presence}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"image"`
}

// Register creates a user account. The hosted OAuth provider normally owns
// identity creation; this path covers direct email/password signup.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, errors.New("name, email and password are required")
	}
	if err := passwordvalidator.Validate(in.Password, minPasswordEntropy); err != nil {
		return nil, fmt.Errorf("weak password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		AvatarURL:    in.Avatar,
		PasswordHash: string(hash),
		LastSeen:     time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials, marks the user online and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).
		Updates(map[string]interface{}{"is_online": true, "last_seen": now}).Error; err != nil {
		return "", nil, fmt.Errorf("failed to update presence: %w", err)
	}
	user.IsOnline = true
	user.LastSeen = now
	_ = s.presence.SetOnline(ctx, user.ID)

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, &user, nil
}

// Logout marks the user offline and stamps last-seen. The token itself stays
// valid until expiry; there is no server-side revocation list.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"is_online": false, "last_seen": time.Now()}).Error; err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	_ = s.presence.SetOffline(ctx, userID)
	return nil
}
