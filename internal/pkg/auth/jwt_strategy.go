package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

type claims struct {
	jwt.RegisteredClaims
	Kind    string `json:"kind"`
	ScopeID string `json:"scope_id,omitempty"`
}

// JWTStrategy implements token creation/verification using HS256 signed JWTs.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed token carrying the principal's kind and scope.
func (s *JWTStrategy) IssueToken(principal model.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Kind:    string(principal.Kind),
		ScopeID: principal.ScopeID,
	})
	return token.SignedString(s.secret)
}

// ParseToken validates the token and returns the encoded principal.
func (s *JWTStrategy) ParseToken(token string) (model.Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	kind := model.PrincipalKind(c.Kind)
	if !kind.IsValid() {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}

	return model.Principal{Kind: kind, UserID: userID, ScopeID: c.ScopeID}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
