package service

import (
	"context"
	"fmt"

	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// TaskForm carries the mutable task fields as submitted. The owning user is
// never part of the form; it always comes from the authenticated identity.
type TaskForm struct {
	Name        string
	Description string
	DueDate     string // YYYY-MM-DD
	Priority    string
	Status      string // ignored on create, required on edit
}

func (f TaskForm) validate(requireStatus bool) error {
	if f.Name == "" || f.Description == "" || f.DueDate == "" || f.Priority == "" {
		return fmt.Errorf("all fields are required: %w", common.ErrValidation)
	}
	if !model.ValidateDay(f.DueDate) {
		return fmt.Errorf("due date must be YYYY-MM-DD: %w", common.ErrValidation)
	}
	if requireStatus {
		if _, ok := model.ParseTaskStatus(f.Status); !ok {
			return fmt.Errorf("status must be pending or completed: %w", common.ErrValidation)
		}
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, identity model.Identity, form TaskForm) (*model.Task, error) {
	if err := form.validate(false); err != nil {
		return nil, err
	}
	task := &model.Task{
		ID:          uuid.NewString(),
		UserID:      identity.UserID,
		Name:        form.Name,
		Description: form.Description,
		DueDate:     form.DueDate,
		Priority:    form.Priority,
		Status:      model.StatusPending,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, identity model.Identity, id string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, identity.UserID, id)
}

// Update is a full-field edit; every field must be present.
func (s *TaskService) Update(ctx context.Context, identity model.Identity, id string, form TaskForm) error {
	if err := form.validate(true); err != nil {
		return err
	}
	status, _ := model.ParseTaskStatus(form.Status)
	task := &model.Task{
		ID:          id,
		Name:        form.Name,
		Description: form.Description,
		DueDate:     form.DueDate,
		Priority:    form.Priority,
		Status:      status,
	}
	return s.taskRepo.Update(ctx, identity.UserID, task)
}

// UpdateStatus flips a task between pending and completed. Both directions
// are permitted; there is no transition guard.
func (s *TaskService) UpdateStatus(ctx context.Context, identity model.Identity, id, rawStatus string) error {
	status, ok := model.ParseTaskStatus(rawStatus)
	if !ok {
		return fmt.Errorf("status must be pending or completed: %w", common.ErrValidation)
	}
	return s.taskRepo.UpdateStatus(ctx, identity.UserID, id, status)
}

func (s *TaskService) Delete(ctx context.Context, identity model.Identity, id string) error {
	return s.taskRepo.Delete(ctx, identity.UserID, id)
}

func (s *TaskService) List(ctx context.Context, identity model.Identity, filters repository.TaskListFilters) ([]model.Task, error) {
	return s.taskRepo.List(ctx, identity.UserID, filters)
}

// Overdue lists pending tasks whose due date is strictly before today.
func (s *TaskService) Overdue(ctx context.Context, identity model.Identity) ([]model.Task, error) {
	return s.taskRepo.ListOverdue(ctx, identity.UserID, model.Today())
}
