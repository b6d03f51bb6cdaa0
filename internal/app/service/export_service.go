package service

import (
	"context"
	"fmt"
	"strings"

	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"

	"github.com/gosimple/slug"
)

// ExportService serializes a user's full listings to plain text. The field
// order and punctuation are a compatibility surface: downstream tools may
// parse these files, so the format must not drift.
type ExportService struct {
	taskRepo  repository.TaskRepository
	diaryRepo repository.DiaryRepository
	userRepo  repository.UserRepository
}

func NewExportService(taskRepo repository.TaskRepository, diaryRepo repository.DiaryRepository, userRepo repository.UserRepository) *ExportService {
	return &ExportService{taskRepo: taskRepo, diaryRepo: diaryRepo, userRepo: userRepo}
}

// Tasks renders one line per task, due date ascending, and returns the
// attachment filename alongside the body.
func (s *ExportService) Tasks(ctx context.Context, identity model.Identity) (string, string, error) {
	tasks, err := s.taskRepo.List(ctx, identity.UserID, repository.TaskListFilters{})
	if err != nil {
		return "", "", fmt.Errorf("failed to list tasks for export: %w", err)
	}

	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "Task: %s, Description: %s, Due Date: %s, Priority: %s, Status: %s\n",
			t.Name, t.Description, t.DueDate, t.Priority, t.Status)
	}

	filename, err := s.filename(ctx, identity, "tasks")
	if err != nil {
		return "", "", err
	}
	return filename, b.String(), nil
}

// Diary renders one block per entry, date descending, blocks separated by
// a --- rule. The Tags line is omitted for untagged entries.
func (s *ExportService) Diary(ctx context.Context, identity model.Identity) (string, string, error) {
	entries, err := s.diaryRepo.List(ctx, identity.UserID, repository.DiaryListFilters{})
	if err != nil {
		return "", "", fmt.Errorf("failed to list diary entries for export: %w", err)
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "Date: %s\n", e.Date)
		fmt.Fprintf(&b, "Title: %s\n", e.Title)
		fmt.Fprintf(&b, "Entry: %s\n", e.Entry)
		if len(e.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
		}
		b.WriteString("\n---\n\n")
	}

	filename, err := s.filename(ctx, identity, "diary")
	if err != nil {
		return "", "", err
	}
	return filename, b.String(), nil
}

// filename derives the attachment name from the account email's local part,
// e.g. jane.doe@example.com -> jane-doe-tasks.txt.
func (s *ExportService) filename(ctx context.Context, identity model.Identity, kind string) (string, error) {
	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user for export filename: %w", err)
	}
	local, _, _ := strings.Cut(user.Email, "@")
	if made := slug.Make(local); made != "" {
		return made + "-" + kind + ".txt", nil
	}
	return kind + ".txt", nil
}
