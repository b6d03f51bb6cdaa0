package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdiary/internal/api"
	"taskdiary/internal/app/service"
	"taskdiary/internal/common"
	"taskdiary/internal/common/security"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"
	"taskdiary/internal/platform/session"

	"github.com/stretchr/testify/require"
)

func init() {
	security.InitTokenAuth([]byte("test-secret"))
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]model.User{}}
}

func (r *stubUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		found := u
		return &found, nil
	}
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: map[string]string{}}
}

func (s *stubSessionStore) Put(ctx context.Context, sid, uid string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = uid
	return nil
}

func (s *stubSessionStore) Get(ctx context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[sid]
	if !ok {
		return "", common.ErrNotFound
	}
	return uid, nil
}

func (s *stubSessionStore) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

type stubFlashStore struct {
	mu     sync.Mutex
	queues map[string][]session.Flash
}

func newStubFlashStore() *stubFlashStore {
	return &stubFlashStore{queues: map[string][]session.Flash{}}
}

func (s *stubFlashStore) Push(ctx context.Context, key string, f session.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[key] = append(s.queues[key], f)
	return nil
}

func (s *stubFlashStore) Drain(ctx context.Context, key string) ([]session.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queues[key]
	delete(s.queues, key)
	return out, nil
}

// queued flattens everything still undelivered, across all keys.
func (s *stubFlashStore) queued() []session.Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []session.Flash
	for _, q := range s.queues {
		out = append(out, q...)
	}
	return out
}

// stubTaskRepo satisfies the repository contract with empty results; the
// flows under test here fail validation before any repository call.
type stubTaskRepo struct{}

func (stubTaskRepo) Create(ctx context.Context, task *model.Task) error { return nil }
func (stubTaskRepo) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	return nil, common.ErrNotFound
}
func (stubTaskRepo) Update(ctx context.Context, userID string, task *model.Task) error { return nil }
func (stubTaskRepo) UpdateStatus(ctx context.Context, userID, id string, status model.TaskStatus) error {
	return nil
}
func (stubTaskRepo) Delete(ctx context.Context, userID, id string) error { return nil }
func (stubTaskRepo) List(ctx context.Context, userID string, filters repository.TaskListFilters) ([]model.Task, error) {
	return nil, nil
}
func (stubTaskRepo) ListOverdue(ctx context.Context, userID, today string) ([]model.Task, error) {
	return nil, nil
}
func (stubTaskRepo) ListUpcomingPending(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	return nil, nil
}
func (stubTaskRepo) Count(ctx context.Context, userID string, status model.TaskStatus) (int, error) {
	return 0, nil
}

type stubDiaryRepo struct{}

func (stubDiaryRepo) Create(ctx context.Context, entry *model.DiaryEntry) error { return nil }
func (stubDiaryRepo) FindByID(ctx context.Context, userID, id string) (*model.DiaryEntry, error) {
	return nil, common.ErrNotFound
}
func (stubDiaryRepo) Update(ctx context.Context, userID string, entry *model.DiaryEntry) error {
	return nil
}
func (stubDiaryRepo) Delete(ctx context.Context, userID, id string) error { return nil }
func (stubDiaryRepo) List(ctx context.Context, userID string, filters repository.DiaryListFilters) ([]model.DiaryEntry, error) {
	return nil, nil
}
func (stubDiaryRepo) Search(ctx context.Context, userID, term string) ([]model.DiaryEntry, error) {
	return nil, nil
}
func (stubDiaryRepo) Count(ctx context.Context, userID string) (int, error) { return 0, nil }
func (stubDiaryRepo) CountMonth(ctx context.Context, userID, month string) (int, error) {
	return 0, nil
}

// captureRenderer records the last render so tests can inspect the data bag.
type captureRenderer struct {
	mu   sync.Mutex
	name string
	data map[string]interface{}
}

func (c *captureRenderer) Render(w http.ResponseWriter, name string, data map[string]interface{}) {
	c.mu.Lock()
	c.name = name
	c.data = data
	c.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (c *captureRenderer) last() (string, map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name, c.data
}

// webFixture assembles the real router over in-memory collaborators.
type webFixture struct {
	users    *stubUserRepo
	flashes  *stubFlashStore
	renderer *captureRenderer
	router   http.Handler
}

func newWebFixture() *webFixture {
	users := newStubUserRepo()
	flashes := newStubFlashStore()
	renderer := &captureRenderer{}

	taskRepo := stubTaskRepo{}
	diaryRepo := stubDiaryRepo{}
	sessions := service.NewSessionService(newStubSessionStore(), users, time.Hour)

	router := api.NewRouter(
		service.NewAuthService(users),
		sessions,
		service.NewTaskService(taskRepo),
		service.NewDiaryService(diaryRepo),
		service.NewDashboardService(taskRepo, diaryRepo),
		service.NewExportService(taskRepo, diaryRepo, users),
		renderer,
		flashes,
	)

	return &webFixture{users: users, flashes: flashes, renderer: renderer, router: router}
}

func (f *webFixture) registerUser(t *testing.T, id, email, password string, role model.Role) {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), &model.User{
		ID: id, Email: email, HashedPassword: hash, Role: role,
	}))
}

func (f *webFixture) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// login posts the credentials and returns every cookie the response set,
// the way a browser would carry them to the next request.
func (f *webFixture) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	rec := f.postForm("/login", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	return rec.Result().Cookies()
}

// loginAndFollow logs in and follows the redirect the way a browser
// would: the dashboard render drains the "Login successful!" notice, so
// later renders carry only their own flashes.
func (f *webFixture) loginAndFollow(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	cookies := f.login(t, email, password)
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	f.router.ServeHTTP(httptest.NewRecorder(), req)
	return cookies
}
