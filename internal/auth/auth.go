package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ContextKey is the type of the keys this package stores in a context.
type ContextKey string

// ViewerCtxKey holds the *domain.Viewer resolved for the request, if any.
const ViewerCtxKey = ContextKey("viewer")

var (
	ErrMalformedHeader = errors.New("authorization header format must be 'Bearer <token>'")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// Claims are the JWT claims issued by the user service.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Resolver turns an Authorization header into the caller's identity.
type Resolver struct {
	secret []byte
	users  domain.UserRepository
	logger *logger.Logger
}

func NewResolver(jwtSecret string, users domain.UserRepository, log *logger.Logger) *Resolver {
	return &Resolver{
		secret: []byte(jwtSecret),
		users:  users,
		logger: log.Named("AuthResolver"),
	}
}

// Resolve returns the viewer for authHeader, or nil when there is no caller. A missing
// header, a bad token and a token for an unknown user all mean no caller. Only store
// failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*domain.Viewer, error) {
	if authHeader == "" {
		return nil, nil
	}

	userID, err := r.ParseToken(authHeader)
	if err != nil {
		r.logger.Warn("Ignoring unusable authorization header", zap.Error(err))
		return nil, nil
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("Token subject is not a known user", zap.String("user_id", userID))
			return nil, nil
		}
		r.logger.Error("Failed to look up viewer", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to resolve viewer: %v", domain.ErrUpstream, err)
	}
	return &domain.Viewer{ID: user.ID}, nil
}

// ParseToken validates a "Bearer <token>" header and returns its user_id claim.
func (r *Resolver) ParseToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformedHeader
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: user_id claim is empty", ErrInvalidToken)
	}
	return claims.UserID, nil
}

// WithViewer stores viewer in ctx. A nil viewer is stored as no caller.
func WithViewer(ctx context.Context, viewer *domain.Viewer) context.Context {
	return context.WithValue(ctx, ViewerCtxKey, viewer)
}

// ViewerFromContext returns the viewer stored by WithViewer, or nil.
func ViewerFromContext(ctx context.Context) *domain.Viewer {
	viewer, _ := ctx.Value(ViewerCtxKey).(*domain.Viewer)
	return viewer
}
