package service

import (
	"complykit/internal/config"
	"complykit/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService verifies identity-provider tokens and issues development tokens
type AuthService struct {
	devUsername string
	devPassword string
	jwtSecret   []byte
	tokenTTL    time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		devUsername: cfg.DevUsername,
		devPassword: cfg.DevPassword,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.TokenTTL,
	}
}

// Login validates the development credentials and returns a token. The user
// id is derived from the username so history survives re-login.
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if s.devUsername == "" || username != s.devUsername || password != s.devPassword {
		return nil, ErrInvalidCredentials
	}

	userID := "user_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)).String()[:8]
	token, err := s.IssueToken(userID, "")
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  token,
		UserID: userID,
	}, nil
}

// IssueToken signs an HS256 token for userID
func (s *AuthService) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &model.UserClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a token and returns the user it names
func (s *AuthService) ValidateToken(tokenString string) (*model.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user := &model.User{ID: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		user.CreatedAt = claims.IssuedAt.Unix()
	}
	return user, nil
}
