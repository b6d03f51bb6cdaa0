package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
)

// TaskListFilters are the optional clauses of a task listing. The mandatory
// ownership clause is not part of this struct; List injects it itself.
type TaskListFilters struct {
	Search   string // substring, case-insensitive match on name
	Status   string // exact
	Priority string // exact
	SortBy   string // whitelisted column, default due_date
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, userID, id string) (*model.Task, error)
	Update(ctx context.Context, userID string, task *model.Task) error
	UpdateStatus(ctx context.Context, userID, id string, status model.TaskStatus) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, filters TaskListFilters) ([]model.Task, error)
	ListOverdue(ctx context.Context, userID, today string) ([]model.Task, error)
	ListUpcomingPending(ctx context.Context, userID string, limit int) ([]model.Task, error)
	Count(ctx context.Context, userID string, status model.TaskStatus) (int, error)
}

// TaskSortKeys whitelists caller-selectable sort columns. Anything else
// falls back to the default; sort input is never interpolated directly.
var TaskSortKeys = map[string]string{
	"due_date":   "due_date",
	"name":       "name",
	"priority":   "priority",
	"status":     "status",
	"created_at": "created_at",
}

const taskColumns = `id, user_id, name, description, due_date, priority, status, created_at, updated_at`

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks (id, user_id, name, description, due_date, priority, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Description, t.DueDate, t.Priority, t.Status)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

// FindByID filters by id and owner in one lookup. A task owned by another
// user is ErrNotFound, same as a nonexistent id.
func (r *pgTaskRepository) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	t := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Name, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, userID string, t *model.Task) error {
	query := `UPDATE tasks SET
	            name = $1, description = $2, due_date = $3, priority = $4,
	            status = $5, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $6 AND user_id = $7`
	res, err := r.db.ExecContext(ctx, query, t.Name, t.Description, t.DueDate, t.Priority, t.Status, t.ID, userID)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return rowsOrNotFound(res, "pgTaskRepository.Update")
}

func (r *pgTaskRepository) UpdateStatus(ctx context.Context, userID, id string, status model.TaskStatus) error {
	query := `UPDATE tasks SET status = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2 AND user_id = $3`
	res, err := r.db.ExecContext(ctx, query, status, id, userID)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.UpdateStatus: %w", err)
	}
	return rowsOrNotFound(res, "pgTaskRepository.UpdateStatus")
}

func (r *pgTaskRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	return rowsOrNotFound(res, "pgTaskRepository.Delete")
}

func (r *pgTaskRepository) List(ctx context.Context, userID string, filters TaskListFilters) ([]model.Task, error) {
	f := NewOwnerFilter(userID)
	if filters.Search != "" {
		f.And("name ILIKE %s", ILikeContains(filters.Search))
	}
	if filters.Status != "" {
		f.And("status = %s", filters.Status)
	}
	if filters.Priority != "" {
		f.And("priority = %s", filters.Priority)
	}

	sortBy, ok := TaskSortKeys[filters.SortBy]
	if !ok {
		sortBy = "due_date"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + f.Where() + ` ORDER BY ` + sortBy + ` ASC`
	return r.queryTasks(ctx, query, f.Args()...)
}

// ListOverdue relies on due dates being zero-padded YYYY-MM-DD strings, so
// the lexicographic comparison matches calendar order. Completed tasks are
// never overdue.
func (r *pgTaskRepository) ListOverdue(ctx context.Context, userID, today string) ([]model.Task, error) {
	f := NewOwnerFilter(userID).
		And("due_date < %s", today).
		And("status = %s", model.StatusPending)
	query := `SELECT ` + taskColumns + ` FROM tasks` + f.Where() + ` ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, f.Args()...)
}

func (r *pgTaskRepository) ListUpcomingPending(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	f := NewOwnerFilter(userID).And("status = %s", model.StatusPending)
	query := fmt.Sprintf(`SELECT `+taskColumns+` FROM tasks`+f.Where()+` ORDER BY due_date ASC LIMIT %d`, limit)
	return r.queryTasks(ctx, query, f.Args()...)
}

func (r *pgTaskRepository) Count(ctx context.Context, userID string, status model.TaskStatus) (int, error) {
	f := NewOwnerFilter(userID)
	if status != "" {
		f.And("status = %s", status)
	}
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks`+f.Where(), f.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgTaskRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgTaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository query: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTaskRepository scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository rows.Err: %w", err)
	}
	return tasks, nil
}

// rowsOrNotFound converts a zero-rows-affected mutation into ErrNotFound.
// "No such record" and "record not owned" are indistinguishable here.
func rowsOrNotFound(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
