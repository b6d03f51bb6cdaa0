package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdiary/internal/common"
	"taskdiary/internal/common/security"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"
	"taskdiary/internal/platform/session"

	"github.com/google/uuid"
)

// SessionService owns the session lifecycle: issue on login, resolve on
// every protected request, destroy on logout. The token is a signed claim
// set; the Redis registry entry is what makes it revocable.
type SessionService struct {
	store    session.Store
	userRepo repository.UserRepository
	ttl      time.Duration
}

func NewSessionService(store session.Store, userRepo repository.UserRepository, ttl time.Duration) *SessionService {
	return &SessionService{store: store, userRepo: userRepo, ttl: ttl}
}

// Issue registers a fresh session and returns its signed token.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.NewString()
	if err := s.store.Put(ctx, sessionID, userID, s.ttl); err != nil {
		return "", fmt.Errorf("failed to register session: %w", err)
	}
	token, err := security.GenerateSessionToken(userID, sessionID, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return token, nil
}

// Resolve turns verified token claims into an Identity. The claims alone
// are not enough: the session id must still be registered and must map back
// to the same user id the token names.
func (s *SessionService) Resolve(ctx context.Context, claims map[string]interface{}) (model.Identity, error) {
	userID, err := security.GetUserIDFromClaims(claims)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%v: %w", err, common.ErrUnauthorized)
	}
	sessionID, err := security.GetSessionIDFromClaims(claims)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%v: %w", err, common.ErrUnauthorized)
	}

	registeredUserID, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.Identity{}, common.ErrUnauthorized
		}
		return model.Identity{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	if registeredUserID != userID {
		return model.Identity{}, common.ErrUnauthorized
	}

	return model.Identity{UserID: userID, SessionID: sessionID}, nil
}

// Destroy invalidates a session immediately.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// RequireRole gates an identity on role membership. The role is re-fetched
// live from the user record, never trusted from token claims, so a role
// change takes effect on the next request.
func (s *SessionService) RequireRole(ctx context.Context, identity model.Identity, allowed ...model.Role) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to fetch user for role check: %w", err)
	}
	// An unparseable stored role invalidates the session rather than
	// forbidding it: ErrForbidden bounces to the dashboard, which is
	// role-gated itself and would loop.
	role, err := model.ParseRole(string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrUnauthorized)
	}
	for _, a := range allowed {
		if role == a {
			return user, nil
		}
	}
	return nil, common.ErrForbidden
}
