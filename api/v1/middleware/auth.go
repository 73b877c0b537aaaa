package middleware

import (
	"errors"
	"strings"

	"budgeter/internal/auth"
	"budgeter/internal/ban"
	"budgeter/internal/httpx"
	"budgeter/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middlewares
const (
	ContextKeyUID   = "uid"
	ContextKeyEmail = "email"
	ContextKeyRole  = "role"
	ContextKeyUser  = "user"
)

// AuthRequired is a middleware that validates JWT token
func AuthRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.AbortErr(c, httpx.ErrUnauthorized("missing authorization header"))
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.AbortErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			return
		}

		// Parse and validate token
		claims, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.AbortErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.AbortErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			return
		}

		// Role is the login-time snapshot; ActiveSession replaces it with the live role
		c.Set(ContextKeyUID, claims.UID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// ActiveSession loads the live record of the token holder and rejects
// banned callers with a session-revoked error. Must run after AuthRequired.
func ActiveSession(gate *ban.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetInt(ContextKeyUID)
		if uid == 0 {
			httpx.AbortErr(c, httpx.ErrUnauthorized(""))
			return
		}

		u, status, err := gate.CheckSession(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, ban.ErrNotFound) {
				httpx.AbortErr(c, httpx.ErrInvalidToken("account no longer exists"))
				return
			}
			httpx.AbortErr(c, httpx.ErrDatabaseError("failed to load session user", err))
			return
		}
		if status.IsBanned {
			httpx.AbortErr(c, httpx.ErrSessionRevoked("account is banned").WithData(gin.H{
				"reason":      status.Reason,
				"bannedUntil": status.BannedUntil,
			}))
			return
		}

		c.Set(ContextKeyUser, u)
		c.Set(ContextKeyRole, string(u.Role))
		c.Next()
	}
}

// AdminRequired rejects callers whose live role is not admin. Must run after
// ActiveSession.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.IsAdmin() {
			httpx.AbortErr(c, httpx.ErrForbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the live user record loaded by ActiveSession
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}
