// Package auth issues and checks the HS256 tokens that guard the admin HTTP
// API.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "tokenbot"

// Claims carries the Telegram id of the administrator in the subject.
type Claims struct {
	jwt.RegisteredClaims
}

func GenerateToken(adminID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// AdminIDFromToken validates tokenString and returns the admin id it was
// issued for.
func AdminIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}
