// Package auth turns bearer tokens into the models.Actor that every service
// call receives explicitly.
package auth

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuerName = "complaintdesk"
	actorKey   = "actor"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Issuer signs and verifies HS256 tokens whose subject is the user ID.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a token for userID.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuerName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies a token and returns its subject.
func (i *Issuer) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// RoleResolver looks up the current role of a user. Roles are read on every
// request so that changes apply without reissuing tokens.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (models.Role, error)
}

// bearer extracts the token from the Authorization header, or from the
// "token" query parameter for websocket upgrades from browsers.
func bearer(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return c.Query("token")
}

// Middleware authenticates the request and stores the actor on the context.
func Middleware(issuer *Issuer, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		userID, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		role, err := roles.RoleOf(c.Request.Context(), userID)
		if err != nil {
			log.Printf("ERROR: Failed to resolve role of %s: %v", userID, err)
			status := http.StatusInternalServerError
			if apperr.IsTransient(err) {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "Could not load your account"})
			return
		}

		c.Set(actorKey, models.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom returns the actor stored by Middleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
