package application

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"devcraft-studio/backend/internal/features/auth/domain"
	"devcraft-studio/backend/internal/storage"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

// AuthService registers users, checks passwords and issues bearer tokens.
type AuthService struct {
	users  *storage.Table[domain.User]
	secret []byte
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(users *storage.Table[domain.User], secret string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, secret: []byte(secret), logger: logger, now: time.Now}
}

// Register creates a regular account and signs it in.
func (s *AuthService) Register(reg domain.Registration) (*domain.Session, error) {
	user, err := s.create(reg, false)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// SeedAdmin creates the admin account unless the username is taken.
func (s *AuthService) SeedAdmin(username, password, email string) error {
	_, err := s.create(domain.Registration{
		Username: username,
		Password: password,
		Name:     "Admin User",
		Email:    email,
	}, true)
	if errors.Is(err, domain.ErrUsernameTaken) {
		return nil
	}
	return err
}

func (s *AuthService) create(reg domain.Registration, admin bool) (domain.User, error) {
	if _, ok := s.findByUsername(reg.Username); ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := s.users.Insert(func(id int64) domain.User {
		return domain.User{
			ID:           id,
			Username:     reg.Username,
			PasswordHash: string(hash),
			Name:         reg.Name,
			Email:        reg.Email,
			IsAdmin:      admin,
		}
	})
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "admin", admin)
	return user, nil
}

// Login checks a username and password pair.
func (s *AuthService) Login(creds domain.Credentials) (*domain.Session, error) {
	user, ok := s.findByUsername(creds.Username)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// User returns the account with id.
func (s *AuthService) User(id int64) (domain.User, error) {
	user, err := s.users.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) findByUsername(username string) (domain.User, bool) {
	return s.users.Find(func(u domain.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (s *AuthService) issue(user domain.User) (*domain.Session, error) {
	now := s.now()
	claims := domain.Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.Session{Token: token, User: user}, nil
}

// ValidateToken parses a bearer token issued by this service.
func (s *AuthService) ValidateToken(tokenStr string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &domain.Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
