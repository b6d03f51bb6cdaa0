package service

import (
	"context"
	"fmt"

	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"
)

type DashboardService struct {
	taskRepo  repository.TaskRepository
	diaryRepo repository.DiaryRepository
}

func NewDashboardService(taskRepo repository.TaskRepository, diaryRepo repository.DiaryRepository) *DashboardService {
	return &DashboardService{taskRepo: taskRepo, diaryRepo: diaryRepo}
}

// IndexStats backs the landing page counters.
type IndexStats struct {
	TotalTasks        int `json:"total_tasks"`
	PendingTasks      int `json:"pending_tasks"`
	TotalDiaryEntries int `json:"total_diary_entries"`
}

func (s *DashboardService) Index(ctx context.Context, identity model.Identity) (*IndexStats, error) {
	total, err := s.taskRepo.Count(ctx, identity.UserID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	pending, err := s.taskRepo.Count(ctx, identity.UserID, model.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	entries, err := s.diaryRepo.Count(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count diary entries: %w", err)
	}
	return &IndexStats{TotalTasks: total, PendingTasks: pending, TotalDiaryEntries: entries}, nil
}

// DashboardData is the data bag for the role-specific dashboard views.
type DashboardData struct {
	TotalTasks       int          `json:"total_tasks"`
	PendingTasks     int          `json:"pending_tasks"`
	CompletedTasks   int          `json:"completed_tasks"`
	TotalEntries     int          `json:"total_entries"`
	ThisMonthEntries int          `json:"this_month_entries"`
	PriorityTasks    []model.Task `json:"priority_tasks"`
}

// upcomingTaskLimit caps the "what's next" list on the dashboard.
const upcomingTaskLimit = 5

func (s *DashboardService) Dashboard(ctx context.Context, identity model.Identity) (*DashboardData, error) {
	data := &DashboardData{}
	var err error

	if data.TotalTasks, err = s.taskRepo.Count(ctx, identity.UserID, ""); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if data.PendingTasks, err = s.taskRepo.Count(ctx, identity.UserID, model.StatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	if data.CompletedTasks, err = s.taskRepo.Count(ctx, identity.UserID, model.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	if data.TotalEntries, err = s.diaryRepo.Count(ctx, identity.UserID); err != nil {
		return nil, fmt.Errorf("failed to count diary entries: %w", err)
	}

	// "This month" reuses the stored YYYY-MM-DD form: the month is its
	// first seven characters.
	month := model.Today()[:7]
	if data.ThisMonthEntries, err = s.diaryRepo.CountMonth(ctx, identity.UserID, month); err != nil {
		return nil, fmt.Errorf("failed to count this month's entries: %w", err)
	}

	if data.PriorityTasks, err = s.taskRepo.ListUpcomingPending(ctx, identity.UserID, upcomingTaskLimit); err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return data, nil
}
