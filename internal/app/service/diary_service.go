package service

import (
	"context"
	"fmt"

	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"

	"github.com/google/uuid"
)

type DiaryService struct {
	diaryRepo repository.DiaryRepository
}

func NewDiaryService(diaryRepo repository.DiaryRepository) *DiaryService {
	return &DiaryService{diaryRepo: diaryRepo}
}

// DiaryForm carries the submitted entry fields; Tags is the raw
// comma-separated string. Ownership comes from the identity, not the form.
type DiaryForm struct {
	Title string
	Entry string
	Date  string // YYYY-MM-DD, blank means today on create
	Tags  string
}

func (f DiaryForm) validate() error {
	if f.Title == "" || f.Entry == "" {
		return fmt.Errorf("title and entry are required: %w", common.ErrValidation)
	}
	if f.Date != "" && !model.ValidateDay(f.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", common.ErrValidation)
	}
	return nil
}

func (s *DiaryService) Create(ctx context.Context, identity model.Identity, form DiaryForm) (*model.DiaryEntry, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}
	date := form.Date
	if date == "" {
		date = model.Today()
	}
	entry := &model.DiaryEntry{
		ID:     uuid.NewString(),
		UserID: identity.UserID,
		Title:  form.Title,
		Entry:  form.Entry,
		Date:   date,
		Tags:   model.ParseTags(form.Tags),
	}
	if err := s.diaryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create diary entry: %w", err)
	}
	return entry, nil
}

func (s *DiaryService) Get(ctx context.Context, identity model.Identity, id string) (*model.DiaryEntry, error) {
	return s.diaryRepo.FindByID(ctx, identity.UserID, id)
}

// Update is a full-field edit; the date must be present here, unlike create.
func (s *DiaryService) Update(ctx context.Context, identity model.Identity, id string, form DiaryForm) error {
	if err := form.validate(); err != nil {
		return err
	}
	if form.Date == "" {
		return fmt.Errorf("date is required: %w", common.ErrValidation)
	}
	entry := &model.DiaryEntry{
		ID:    id,
		Title: form.Title,
		Entry: form.Entry,
		Date:  form.Date,
		Tags:  model.ParseTags(form.Tags),
	}
	return s.diaryRepo.Update(ctx, identity.UserID, entry)
}

func (s *DiaryService) Delete(ctx context.Context, identity model.Identity, id string) error {
	return s.diaryRepo.Delete(ctx, identity.UserID, id)
}

func (s *DiaryService) List(ctx context.Context, identity model.Identity, filters repository.DiaryListFilters) ([]model.DiaryEntry, error) {
	return s.diaryRepo.List(ctx, identity.UserID, filters)
}

func (s *DiaryService) Search(ctx context.Context, identity model.Identity, term string) ([]model.DiaryEntry, error) {
	return s.diaryRepo.Search(ctx, identity.UserID, term)
}
