// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

const (
	principalKey = "__relay_principal"
	// browsers cannot set headers on a websocket upgrade
	tokenQueryKey = "token"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Principal is the operator a request was authenticated as.
type Principal struct {
	Subject string
	Role    string
}

type claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	logger commons.Logger
	secret []byte
	issuer string
}

func NewAuthenticator(logger commons.Logger, secret, issuer string) *Authenticator {
	return &Authenticator{logger: logger, secret: []byte(secret), issuer: issuer}
}

// Sign issues a HS256 operator token valid for ttl.
func (a *Authenticator) Sign(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(a.secret)
}

// Verify parses a token string and returns its principal.
func (a *Authenticator) Verify(raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return &Principal{Subject: c.Subject, Role: c.Role}, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader(utils.HEADER_AUTH_KEY), utils.BEARER_PREFIX)
		if raw == "" {
			raw = c.Query(tokenQueryKey)
		}
		principal, err := a.Verify(strings.TrimSpace(raw))
		if err != nil {
			a.logger.Warnf("unauthenticated request to %s: %v", c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}
