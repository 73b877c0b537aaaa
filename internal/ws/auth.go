package ws

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"budgeter/internal/auth"
)

// extractToken extracts JWT token from request
// Priority: 1. token query parameter, 2. Authorization header
func extractToken(r *http.Request) string {
	return tokenFrom(r.URL, r.Header)
}

func tokenFrom(u *url.URL, header http.Header) string {
	// Socket.IO client: io("url", { query: { token: "xxx" } })
	if u != nil {
		if token := u.Query().Get("token"); token != "" {
			return token
		}
	}

	// Format: "Bearer <token>"
	authHeader := header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return ""
}

// WrapWithAuth rejects Socket.IO handshakes that carry no valid token
func WrapWithAuth(next http.Handler, tokens *auth.TokenManager, logger *logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Socket.IO handshake is a GET request to /socket.io/?EIO=4&transport=polling
		if r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/socket.io/") {
			token := extractToken(r)
			if token == "" {
				logger.WithField("remote_addr", r.RemoteAddr).Debug("Handshake rejected: no token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if _, err := tokens.Parse(token); err != nil {
				logger.WithField("remote_addr", r.RemoteAddr).WithError(err).Debug("Handshake rejected: invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
