package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"
)

// In-memory repository fakes. Each mirrors the pg implementation's
// contract, including the dual (id, user_id) predicate: a record owned by
// someone else behaves exactly like a missing one.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	u := *user
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := u
			return &copy, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copy := u
		return &copy, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task // by id
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]model.Task{}}
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *t
	stored.CreatedAt = time.Now()
	r.tasks[stored.ID] = stored
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrNotFound
	}
	copy := t
	return &copy, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, userID string, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[t.ID]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	existing.Name = t.Name
	existing.Description = t.Description
	existing.DueDate = t.DueDate
	existing.Priority = t.Priority
	existing.Status = t.Status
	now := time.Now()
	existing.UpdatedAt = &now
	r.tasks[t.ID] = existing
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, userID, id string, status model.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	existing.Status = status
	r.tasks[id] = existing
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(ctx context.Context, userID string, filters repository.TaskListFilters) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Task{}
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.Status != "" && string(t.Status) != filters.Status {
			continue
		}
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out, filters.SortBy)
	return out, nil
}

func sortTasks(tasks []model.Task, sortBy string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		switch sortBy {
		case "name":
			return tasks[i].Name < tasks[j].Name
		case "priority":
			return tasks[i].Priority < tasks[j].Priority
		case "status":
			return tasks[i].Status < tasks[j].Status
		default:
			return tasks[i].DueDate < tasks[j].DueDate
		}
	})
}

func (r *fakeTaskRepo) ListOverdue(ctx context.Context, userID, today string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Task{}
	for _, t := range r.tasks {
		if t.UserID == userID && t.DueDate < today && t.Status == model.StatusPending {
			out = append(out, t)
		}
	}
	sortTasks(out, "")
	return out, nil
}

func (r *fakeTaskRepo) ListUpcomingPending(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	all, _ := r.List(ctx, userID, repository.TaskListFilters{Status: string(model.StatusPending)})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context, userID string, status model.TaskStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tasks {
		if t.UserID == userID && (status == "" || t.Status == status) {
			count++
		}
	}
	return count, nil
}

type fakeDiaryRepo struct {
	mu      sync.Mutex
	entries map[string]model.DiaryEntry // by id
}

func newFakeDiaryRepo() *fakeDiaryRepo {
	return &fakeDiaryRepo{entries: map[string]model.DiaryEntry{}}
}

func (r *fakeDiaryRepo) Create(ctx context.Context, e *model.DiaryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	stored.CreatedAt = time.Now()
	r.entries[stored.ID] = stored
	return nil
}

func (r *fakeDiaryRepo) FindByID(ctx context.Context, userID, id string) (*model.DiaryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrNotFound
	}
	copy := e
	return &copy, nil
}

func (r *fakeDiaryRepo) Update(ctx context.Context, userID string, e *model.DiaryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[e.ID]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	existing.Title = e.Title
	existing.Entry = e.Entry
	existing.Date = e.Date
	existing.Tags = e.Tags
	now := time.Now()
	existing.UpdatedAt = &now
	r.entries[e.ID] = existing
	return nil
}

func (r *fakeDiaryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeDiaryRepo) List(ctx context.Context, userID string, filters repository.DiaryListFilters) ([]model.DiaryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.DiaryEntry{}
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if filters.Date != "" && e.Date != filters.Date {
			continue
		}
		if filters.Tag != "" && !containsTag(e.Tags, filters.Tag) {
			continue
		}
		out = append(out, e)
	}
	sortEntriesByDateDesc(out)
	return out, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortEntriesByDateDesc(entries []model.DiaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}

func (r *fakeDiaryRepo) Search(ctx context.Context, userID, term string) ([]model.DiaryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(term)
	out := []model.DiaryEntry{}
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		haystack := strings.ToLower(e.Title + " " + e.Entry + " " + strings.Join(e.Tags, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, e)
		}
	}
	sortEntriesByDateDesc(out)
	return out, nil
}

func (r *fakeDiaryRepo) Count(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDiaryRepo) CountMonth(ctx context.Context, userID, month string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.entries {
		if e.UserID == userID && strings.HasPrefix(e.Date, month) {
			count++
		}
	}
	return count, nil
}

// fakeSessionStore mirrors the Redis registry minus the TTL.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string // sid -> user id
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}}
}

func (s *fakeSessionStore) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[sessionID]
	if !ok {
		return "", common.ErrNotFound
	}
	return userID, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
