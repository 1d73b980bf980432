package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/store"
)

// Common errors for task operations.
var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTask = errors.New("invalid task")
	ErrMissingUser = errors.New("user id is required")
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 4000
	maxCategoryLen    = 255
)

// Filter narrows a task listing. Zero values match everything.
type Filter struct {
	Status   *core.TaskStatus
	Category string
}

// Draft holds the fields of a new task.
type Draft struct {
	Title       string
	Description *string
	Category    *string
}

// Patch holds the fields to change on an existing task. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Status      *core.TaskStatus
}

// Service provides per-user task management.
type Service struct {
	store store.TaskStore
	now   func() time.Time
}

// New creates a new task service.
func New(st store.TaskStore) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new PENDING task for the user.
func (s *Service) Create(ctx context.Context, userID string, draft Draft) (*core.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateTitle(draft.Title); err != nil {
		return nil, err
	}
	if err := validateOptional(draft.Description, draft.Category); err != nil {
		return nil, err
	}

	now := s.now()
	row := &store.Task{
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Status:      string(core.TaskStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, row); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return toCore(row), nil
}

// List returns the user's tasks newest first.
func (s *Service) List(ctx context.Context, userID string, filter Filter) ([]core.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var sf store.TaskFilter
	if filter.Status != nil {
		status := string(*filter.Status)
		sf.Status = &status
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		sf.Category = &category
	}

	rows, err := s.store.ListTasks(ctx, userID, sf)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]core.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toCore(row))
	}
	return out, nil
}

// Get returns one of the user's tasks.
func (s *Service) Get(ctx context.Context, userID string, id int64) (*core.Task, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toCore(row), nil
}

// Update applies a partial change and bumps UpdatedAt.
func (s *Service) Update(ctx context.Context, userID string, id int64, patch Patch) (*core.Task, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if err := validateOptional(patch.Description, patch.Category); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, *patch.Status)
	}

	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		row.Title = *patch.Title
	}
	if patch.Description != nil {
		row.Description = patch.Description
	}
	if patch.Category != nil {
		row.Category = patch.Category
	}
	if patch.Status != nil {
		row.Status = string(*patch.Status)
	}
	row.UpdatedAt = s.now()

	if err := s.store.UpdateTask(ctx, row); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	return toCore(row), nil
}

// Delete removes one of the user's tasks.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// owned loads a task and hides tasks that belong to other users.
func (s *Service) owned(ctx context.Context, userID string, id int64) (*store.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	row, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if row.UserID != userID {
		return nil, ErrNotFound
	}
	return row, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("%w: title is too long", ErrInvalidTask)
	}
	return nil
}

func validateOptional(description, category *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return fmt.Errorf("%w: description is too long", ErrInvalidTask)
	}
	if category != nil && utf8.RuneCountInString(*category) > maxCategoryLen {
		return fmt.Errorf("%w: category is too long", ErrInvalidTask)
	}
	return nil
}

func toCore(row *store.Task) *core.Task {
	return &core.Task{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Status:      core.TaskStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
