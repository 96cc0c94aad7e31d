// Package token issues and decodes the signed bearer tokens that stand in
// for server-side sessions.
package token

import (
	"errors"
	"time"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs self-contained HS256 assertions of {user_id, email, role, exp}.
// There is no revocation list; validity is purely signature plus expiry, and
// deleting the user is the only way to cut a token off early.
type Issuer struct {
	secret []byte
	expiry time.Duration
}

func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
	}
}

// Issue returns a fresh token for the user with a full expiry window. Refresh
// is the same operation for an already-authenticated caller, which gives
// sliding sessions without a dedicated refresh credential.
func (i *Issuer) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(i.expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Claims are the identity fields recovered from a verified token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Decode verifies signature and expiry and extracts the identity claims.
func (i *Issuer) Decode(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["user_id"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	return &Claims{UserID: userID, Email: email, Role: role}, nil
}
