package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopping-list/internal/config"
)

const issuer = "shopping-list"

type Claims struct {
	Device string `json:"device"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{
		secret:    []byte(cfg.Secret),
		expiresIn: parseExpiry(cfg.ExpiresIn),
		now:       time.Now,
	}
}

// parseExpiry accepts Go durations and the shorthand 7d / 12h / 30m.
// Anything else falls back to seven days.
func parseExpiry(value string) time.Duration {
	expiresIn := 7 * 24 * time.Hour

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if len(value) < 2 {
		return expiresIn
	}
	n, err := strconv.Atoi(value[:len(value)-1])
	if err != nil || n <= 0 {
		return expiresIn
	}
	switch value[len(value)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'h':
		return time.Duration(n) * time.Hour
	case 'm':
		return time.Duration(n) * time.Minute
	}
	return expiresIn
}

func (j *JWTManager) GenerateToken(device string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.expiresIn)
	claims := Claims{
		Device: device,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
