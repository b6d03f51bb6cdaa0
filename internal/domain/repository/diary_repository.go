package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"

	"github.com/lib/pq"
)

// DiaryListFilters are the optional clauses of a diary listing; ownership
// is injected by the repository itself.
type DiaryListFilters struct {
	Date string // exact YYYY-MM-DD
	Tag  string // exact match against one tag value
}

type DiaryRepository interface {
	Create(ctx context.Context, entry *model.DiaryEntry) error
	FindByID(ctx context.Context, userID, id string) (*model.DiaryEntry, error)
	Update(ctx context.Context, userID string, entry *model.DiaryEntry) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, filters DiaryListFilters) ([]model.DiaryEntry, error)
	Search(ctx context.Context, userID, term string) ([]model.DiaryEntry, error)
	Count(ctx context.Context, userID string) (int, error)
	CountMonth(ctx context.Context, userID, month string) (int, error)
}

const diaryColumns = `id, user_id, title, entry, date, tags, created_at, updated_at`

type pgDiaryRepository struct {
	db *sql.DB
}

func NewPgDiaryRepository(db *sql.DB) DiaryRepository {
	return &pgDiaryRepository{db: db}
}

func (r *pgDiaryRepository) Create(ctx context.Context, e *model.DiaryEntry) error {
	query := `INSERT INTO diary_entries (id, user_id, title, entry, date, tags)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Title, e.Entry, e.Date, pq.Array(e.Tags))
	if err != nil {
		return fmt.Errorf("pgDiaryRepository.Create: %w", err)
	}
	return nil
}

func (r *pgDiaryRepository) FindByID(ctx context.Context, userID, id string) (*model.DiaryEntry, error) {
	query := `SELECT ` + diaryColumns + ` FROM diary_entries WHERE id = $1 AND user_id = $2`
	e := &model.DiaryEntry{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.Title, &e.Entry, &e.Date, pq.Array(&e.Tags), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDiaryRepository.FindByID: %w", err)
	}
	return e, nil
}

func (r *pgDiaryRepository) Update(ctx context.Context, userID string, e *model.DiaryEntry) error {
	query := `UPDATE diary_entries SET
	            title = $1, entry = $2, date = $3, tags = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5 AND user_id = $6`
	res, err := r.db.ExecContext(ctx, query, e.Title, e.Entry, e.Date, pq.Array(e.Tags), e.ID, userID)
	if err != nil {
		return fmt.Errorf("pgDiaryRepository.Update: %w", err)
	}
	return rowsOrNotFound(res, "pgDiaryRepository.Update")
}

func (r *pgDiaryRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diary_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("pgDiaryRepository.Delete: %w", err)
	}
	return rowsOrNotFound(res, "pgDiaryRepository.Delete")
}

func (r *pgDiaryRepository) List(ctx context.Context, userID string, filters DiaryListFilters) ([]model.DiaryEntry, error) {
	f := NewOwnerFilter(userID)
	if filters.Date != "" {
		f.And("date = %s", filters.Date)
	}
	if filters.Tag != "" {
		f.And("%s = ANY(tags)", filters.Tag)
	}
	query := `SELECT ` + diaryColumns + ` FROM diary_entries` + f.Where() + ` ORDER BY date DESC`
	return r.queryEntries(ctx, query, f.Args()...)
}

// Search ORs a substring, case-insensitive match across title, entry body
// and tags. The OR group is still AND-combined with the ownership clause.
func (r *pgDiaryRepository) Search(ctx context.Context, userID, term string) ([]model.DiaryEntry, error) {
	like := ILikeContains(term)
	f := NewOwnerFilter(userID).
		And("(title ILIKE %s OR entry ILIKE %s OR array_to_string(tags, ',') ILIKE %s)", like, like, like)
	query := `SELECT ` + diaryColumns + ` FROM diary_entries` + f.Where() + ` ORDER BY date DESC`
	return r.queryEntries(ctx, query, f.Args()...)
}

func (r *pgDiaryRepository) Count(ctx context.Context, userID string) (int, error) {
	f := NewOwnerFilter(userID)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM diary_entries`+f.Where(), f.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgDiaryRepository.Count: %w", err)
	}
	return count, nil
}

// CountMonth counts entries whose date falls in a YYYY-MM month, using the
// stored string form (prefix match on the zero-padded date).
func (r *pgDiaryRepository) CountMonth(ctx context.Context, userID, month string) (int, error) {
	f := NewOwnerFilter(userID).And("date LIKE %s", escapeLike(month)+"%")
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM diary_entries`+f.Where(), f.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgDiaryRepository.CountMonth: %w", err)
	}
	return count, nil
}

func (r *pgDiaryRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.DiaryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgDiaryRepository query: %w", err)
	}
	defer rows.Close()

	entries := []model.DiaryEntry{}
	for rows.Next() {
		var e model.DiaryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Entry, &e.Date, pq.Array(&e.Tags), &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgDiaryRepository scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgDiaryRepository rows.Err: %w", err)
	}
	return entries, nil
}
