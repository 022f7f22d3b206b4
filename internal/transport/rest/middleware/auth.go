package middleware

import (
	"complykit/internal/model"
	"complykit/internal/service"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey     contextKey = "user"
	ClientIDKey contextKey = "clientId"
)

// ClientIDHeader carries the opaque id of an anonymous browser or CLI install
const ClientIDHeader = "X-Client-ID"

// TokenValidator verifies identity-provider tokens
type TokenValidator interface {
	ValidateToken(token string) (*model.User, error)
}

// PendingReplayer moves a client's pending results to a user
type PendingReplayer interface {
	ReplayPending(ctx context.Context, userID, clientID string) (*service.ReplayStats, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	auth     TokenValidator
	replayer PendingReplayer
	log      *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware. replayer may be nil.
func NewAuthMiddleware(auth TokenValidator, replayer PendingReplayer, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, replayer: replayer, log: log}
}

// RequireUser validates the bearer token and rejects anonymous requests
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		user, err := m.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.attach(r, user)))
	})
}

// OptionalUser attaches the user when a valid token is present and lets
// anonymous requests through. A bad token is still rejected so clients
// notice an expired session.
func (m *AuthMiddleware) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			ctx := withClientID(r.Context(), r.Header.Get(ClientIDHeader))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		user, err := m.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.attach(r, user)))
	})
}

// attach stores the user and client id and replays anything the client
// submitted before it signed in
func (m *AuthMiddleware) attach(r *http.Request, user *model.User) context.Context {
	clientID := r.Header.Get(ClientIDHeader)
	ctx := context.WithValue(r.Context(), UserKey, user)
	ctx = withClientID(ctx, clientID)

	if clientID != "" && m.replayer != nil {
		if stats, err := m.replayer.ReplayPending(ctx, user.ID, clientID); err != nil {
			m.log.Warn("pending replay failed", zap.String("user_id", user.ID), zap.Error(err))
		} else if stats.Replayed > 0 {
			m.log.Debug("replayed pending results on request", zap.String("user_id", user.ID), zap.Int("count", stats.Replayed))
		}
	}
	return ctx
}

func withClientID(ctx context.Context, clientID string) context.Context {
	if clientID == "" {
		return ctx
	}
	return context.WithValue(ctx, ClientIDKey, clientID)
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *model.User {
	if v, ok := ctx.Value(UserKey).(*model.User); ok {
		return v
	}
	return nil
}

// GetClientID extracts the anonymous client id from context
func GetClientID(ctx context.Context) string {
	if v, ok := ctx.Value(ClientIDKey).(string); ok {
		return v
	}
	return ""
}

// GetOwner combines user and client id into a submission owner
func GetOwner(ctx context.Context) model.Owner {
	owner := model.Owner{ClientID: GetClientID(ctx)}
	if u := GetUser(ctx); u != nil {
		owner.UserID = u.ID
	}
	return owner
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
