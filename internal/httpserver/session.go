package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cartbridge/internal/remote"
)

type sessionManager interface {
	Issue(userID string) (string, error)
	Resolve(token string) (string, error)
	Revoke(token string)
}

type contextKey string

const userCtxKey contextKey = "userID"

// sessionMiddleware resolves the session cookie into a user id and rejects
// requests without a valid one. Identity never travels in a request body.
func sessionMiddleware(sessions sessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(remote.SessionCookie)
		if err != nil || token == "" {
			respondError(c, http.StatusUnauthorized, "session required")
			c.Abort()
			return
		}
		userID, err := sessions.Resolve(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "session expired or invalid")
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func userFromContext(c *gin.Context) string {
	if v, ok := c.Request.Context().Value(userCtxKey).(string); ok {
		return v
	}
	return ""
}

type sessionRequest struct {
	UserID string `json:"userId"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

// issueSessionHandler is a development-grade login: it binds a caller-chosen
// user id to a fresh token. Real credential checks live in the external auth
// service; the cart API only needs a resolvable session.
func issueSessionHandler(sessions sessionManager, ttlSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
			respondError(c, http.StatusBadRequest, "userId required")
			return
		}
		token, err := sessions.Issue(req.UserID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not create session")
			return
		}
		c.SetCookie(remote.SessionCookie, token, ttlSeconds, "/", "", false, true)
		respondOK(c, http.StatusCreated, sessionResponse{Token: token})
	}
}

// revokeSessionHandler drops the current session token.
func revokeSessionHandler(sessions sessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(remote.SessionCookie); err == nil && token != "" {
			sessions.Revoke(token)
		}
		c.SetCookie(remote.SessionCookie, "", -1, "/", "", false, true)
		respondOK(c, http.StatusOK, nil)
	}
}
