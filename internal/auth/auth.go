package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

const (
	// CookieName is the httpOnly auth cookie set by the web layer.
	CookieName = "authToken"
	// TokenTTL matches the storefront's 7 day sessions.
	TokenTTL = 7 * 24 * time.Hour

	bcryptCost    = 12
	resetTokenTTL = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidResetToken  = errors.New("reset token invalid or expired")
)

// Claims is the JWT payload carried in the auth cookie.
type Claims struct {
	UserId int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements account registration, credential login and the
// password reset round trip over the users table.
type Service struct {
	db     *gorm.DB
	secret []byte
}

func NewService(db *gorm.DB, secret string) *Service {
	return &Service{db: db, secret: []byte(secret)}
}

// HashPassword hashes pw with bcrypt at the storefront's cost.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Register creates a customer account.
func (s *Service) Register(email, password, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !common.ValidEmail(email) {
		return nil, ErrInvalidCredentials
	}

	var count int64
	s.db.Model(&domain.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		ID:       common.UUIDint64(),
		Email:    email,
		Password: hash,
		Name:     name,
		Role:     "user",
		Status:   common.ENABLED,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return &user, nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *Service) Login(email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user domain.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	} else if err != nil {
		return nil, "", errors.Wrap(err, "query user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, "", err
	}

	s.db.Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())
	return &user, token, nil
}

// IssueToken signs a 7 day HS256 token for the user.
func (s *Service) IssueToken(user *domain.User) (string, error) {
	claims := Claims{
		UserId: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Verify parses and validates a token from the auth cookie.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// BeginPasswordReset stores a one hour reset token for the account and
// returns it for delivery by mail. An unknown email returns an empty
// token and no error so the endpoint cannot be used to probe accounts.
func (s *Service) BeginPasswordReset(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user domain.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		zap.L().Info("password reset requested for unknown email")
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "query user")
	}

	token := common.RandomHex(24)
	err = s.db.Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"reset_token":         token,
		"reset_token_expires": time.Now().Add(resetTokenTTL),
	}).Error
	if err != nil {
		return "", errors.Wrap(err, "store reset token")
	}
	return token, nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *Service) ResetPassword(token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	var user domain.User
	err := s.db.Where("reset_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	} else if err != nil {
		return errors.Wrap(err, "query reset token")
	}
	if time.Now().After(user.ResetTokenExpires) {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"password":            hash,
		"reset_token":         "",
		"reset_token_expires": time.Time{},
	}).Error
}
