package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
)

const tokenLifetime = time.Hour

// TokenIssuer issues and verifies the HS256 session tokens carried in the
// jwt cookie.
type TokenIssuer struct {
	secret    []byte
	jwtParser *jwt.Parser
}

func NewTokenIssuer(secret string) *TokenIssuer {
	jwtParser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	return &TokenIssuer{
		secret:    []byte(secret),
		jwtParser: jwtParser,
	}
}

func (i *TokenIssuer) Issue(userId string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.secret)
}

func (i *TokenIssuer) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("unexpected signing method"))
	}
	return i.secret, nil
}

// Verify parses the token and returns the user id it was issued for.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}

	_, err := i.jwtParser.ParseWithClaims(tokenString, &claims, i.keyFunc)
	if err != nil {
		return "", ierr.New(ierr.ErrorCodeUnauthenticated, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("invalid subject claim"))
	}

	return subject, nil
}
