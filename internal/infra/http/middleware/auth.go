package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type ctxKey int

const (
	callerUIDKey ctxKey = iota
	actorKey
)

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// Authenticator verifies HS256 bearer tokens and resolves the caller's
// profile. The role always comes from the profile, never from the token.
type Authenticator struct {
	Secret []byte
	Users  UserLookup
	Logger *logging.Logger
}

func NewAuthenticator(secret string, users UserLookup, logger *logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Authenticator{Secret: []byte(secret), Users: users, Logger: logger}
}

// Authenticate rejects requests without a valid token. A caller whose profile
// is missing continues without an actor; RequireActor decides per route.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing bearer token.")
			return
		}

		uid, err := a.verify(raw)
		if err != nil {
			a.Logger.Debug("token rejected", "error", err)
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token.")
			return
		}

		ctx := WithCallerUID(r.Context(), uid)
		user, err := a.Users.FindByID(ctx, uid)
		switch {
		case errors.Is(err, entity.ErrUserNotFound):
		case err != nil:
			a.Logger.Error("caller profile lookup failed", "uid", uid, "error", err)
			writeAuthError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not load your profile.")
			return
		default:
			ctx = WithActor(ctx, user.Actor())
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// IssueToken signs a token for uid. Used by tests and local tooling.
func IssueToken(secret, uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}

// RequireActor rejects callers without a profile.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			writeAuthError(w, http.StatusForbidden, "PERMISSION_DENIED", "No user profile for this account.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects actors without the given role.
func RequireRole(role entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor.Role != role {
				writeAuthError(w, http.StatusForbidden, "PERMISSION_DENIED", "You do not have access to this resource.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithCallerUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, callerUIDKey, uid)
}

func CallerUID(ctx context.Context) string {
	uid, _ := ctx.Value(callerUIDKey).(string)
	return uid
}

func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(entity.Actor)
	return actor, ok
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for EventSource clients.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
