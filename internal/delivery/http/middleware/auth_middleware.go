package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/pkg/jwt"
	"go-clinic-workflow/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	RoleIDKey    contextKey = "role_id"
	TokenIDKey   contextKey = "token_id"
)

var (
	errMissingHeader = errors.New("authorization header is required")
	errBadHeader     = errors.New("invalid authorization header format")
	errBadToken      = errors.New("invalid or expired token")
	errTokenType     = errors.New("invalid token type")
	errRevoked       = errors.New("token has been revoked")
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

// Authenticate rejects requests without a live access token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.session(r)
		if err != nil {
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate lets anonymous requests through without a session.
// A token that is present but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, err := m.session(r)
		if err != nil {
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) session(r *http.Request) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadHeader
	}

	claims, err := m.jwtService.ValidateToken(parts[1])
	if err != nil {
		return nil, errBadToken
	}
	if claims.TokenType != jwt.AccessToken {
		return nil, errTokenType
	}

	// Check if token exists in Redis (not revoked)
	exists, err := m.redisClient.Exists(r.Context(), jwt.AccessTokenKey(claims.UserID, claims.TokenID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errRevoked
	}

	ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, RoleIDKey, claims.RoleID)
	ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
	return ctx, nil
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, err error) {
	switch err {
	case errMissingHeader, errBadHeader, errBadToken, errTokenType, errRevoked:
		response.Unauthorized(w, capitalize(err.Error()))
	default:
		response.InternalServerError(w, "Failed to validate token")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetSessionDoctorID returns the caller's id when the session belongs to a
// doctor, and nil for anonymous callers or other roles.
func GetSessionDoctorID(ctx context.Context) *uuid.UUID {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	if roleID, _ := GetRoleIDFromContext(ctx); roleID != entity.RoleIDDoctor {
		return nil
	}
	return &userID
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// GetRoleIDFromContext extracts role ID from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}

// WithSession attaches a session to ctx the way Authenticate does.
func WithSession(ctx context.Context, userID uuid.UUID, roleID int) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleIDKey, roleID)
}
