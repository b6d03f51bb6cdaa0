package service

import (
	"context"
	"testing"
	"time"

	"taskdiary/internal/common"
	"taskdiary/internal/common/security"
	"taskdiary/internal/domain/model"

	"github.com/stretchr/testify/require"
)

func init() {
	security.InitTokenAuth([]byte("test-secret"))
}

func issueAndDecode(t *testing.T, svc *SessionService, userID string) map[string]interface{} {
	t.Helper()
	token, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	decoded, err := security.TokenAuth.Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	return claims
}

func TestIssueResolveRoundTrip(t *testing.T) {
	svc := NewSessionService(newFakeSessionStore(), newFakeUserRepo(), time.Hour)
	claims := issueAndDecode(t, svc, "user-1")

	identity, err := svc.Resolve(context.Background(), claims)
	require.NoError(t, err)
	require.Equal(t, "user-1", identity.UserID)
	require.NotEmpty(t, identity.SessionID)
}

func TestDestroyInvalidatesSession(t *testing.T) {
	svc := NewSessionService(newFakeSessionStore(), newFakeUserRepo(), time.Hour)
	claims := issueAndDecode(t, svc, "user-1")

	identity, err := svc.Resolve(context.Background(), claims)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(context.Background(), identity.SessionID))

	// The token itself is still well-formed and unexpired; only the
	// registry entry is gone, and that is enough to kill the session.
	_, err = svc.Resolve(context.Background(), claims)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestResolveRejectsForgedClaims(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store, newFakeUserRepo(), time.Hour)

	_, err := svc.Resolve(context.Background(), map[string]interface{}{})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Resolve(context.Background(), map[string]interface{}{
		"user_id": "user-1", "sid": "never-registered",
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// A registered session id must still map back to the claimed user.
	require.NoError(t, store.Put(context.Background(), "sid-x", "user-2", time.Hour))
	_, err = svc.Resolve(context.Background(), map[string]interface{}{
		"user_id": "user-1", "sid": "sid-x",
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRequireRoleChecksLiveRecord(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.Create(context.Background(), &model.User{
		ID: "user-1", Email: "t@example.com", Role: model.RoleTeacher,
	}))
	svc := NewSessionService(newFakeSessionStore(), users, time.Hour)
	identity := model.Identity{UserID: "user-1", SessionID: "sid"}

	user, err := svc.RequireRole(context.Background(), identity, model.RoleTeacher, model.RoleBusiness)
	require.NoError(t, err)
	require.Equal(t, model.RoleTeacher, user.Role)

	_, err = svc.RequireRole(context.Background(), identity, model.RoleStudent)
	require.ErrorIs(t, err, common.ErrForbidden)

	// A vanished user is an authentication failure, not a role mismatch.
	ghost := model.Identity{UserID: "missing", SessionID: "sid"}
	_, err = svc.RequireRole(context.Background(), ghost, model.RoleTeacher)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// So is a corrupt stored role: a role mismatch would redirect to the
	// role-gated dashboard and loop.
	require.NoError(t, users.Create(context.Background(), &model.User{
		ID: "user-2", Email: "c@example.com", Role: model.Role("wizard"),
	}))
	corrupt := model.Identity{UserID: "user-2", SessionID: "sid"}
	_, err = svc.RequireRole(context.Background(), corrupt, model.RoleTeacher)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
