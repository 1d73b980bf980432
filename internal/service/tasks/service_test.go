package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := New(st)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func strPtr(s string) *string { return &s }

func statusPtr(s core.TaskStatus) *core.TaskStatus { return &s }

func TestCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", Draft{Title: "Buy milk", Description: strPtr("2%"), Category: strPtr("errands")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == 0 || task.Status != core.TaskStatusPending {
		t.Fatalf("unexpected task: %+v", task)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v / %v", task.CreatedAt, task.UpdatedAt)
	}

	tests := []struct {
		name  string
		user  string
		draft Draft
		want  error
	}{
		{name: "missing user", user: " ", draft: Draft{Title: "x"}, want: ErrMissingUser},
		{name: "blank title", user: "alice", draft: Draft{Title: "   "}, want: ErrInvalidTask},
		{name: "long title", user: "alice", draft: Draft{Title: strings.Repeat("t", 256)}, want: ErrInvalidTask},
		{name: "long description", user: "alice", draft: Draft{Title: "x", Description: strPtr(strings.Repeat("d", 4001))}, want: ErrInvalidTask},
		{name: "long category", user: "alice", draft: Draft{Title: "x", Category: strPtr(strings.Repeat("c", 256))}, want: ErrInvalidTask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.user, tt.draft); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, d := range []Draft{
		{Title: "a1", Category: strPtr("errands")},
		{Title: "a2", Category: strPtr("work")},
		{Title: "a3"},
	} {
		if _, err := svc.Create(ctx, "alice", d); err != nil {
			t.Fatalf("create %s: %v", d.Title, err)
		}
	}
	if _, err := svc.Create(ctx, "bob", Draft{Title: "b1", Category: strPtr("errands")}); err != nil {
		t.Fatalf("create b1: %v", err)
	}

	a2, err := svc.List(ctx, "alice", Filter{Category: "work"})
	if err != nil || len(a2) != 1 {
		t.Fatalf("expected one work task, got %v (err %v)", a2, err)
	}
	if _, err := svc.Update(ctx, "alice", a2[0].ID, Patch{Status: statusPtr(core.TaskStatusActioned)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all newest first", filter: Filter{}, want: []string{"a3", "a2", "a1"}},
		{name: "blank category ignored", filter: Filter{Category: "  "}, want: []string{"a3", "a2", "a1"}},
		{name: "category trimmed", filter: Filter{Category: " errands "}, want: []string{"a1"}},
		{name: "pending", filter: Filter{Status: statusPtr(core.TaskStatusPending)}, want: []string{"a3", "a1"}},
		{name: "actioned work", filter: Filter{Status: statusPtr(core.TaskStatusActioned), Category: "work"}, want: []string{"a2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, "alice", tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].Title != tt.want[i] {
					t.Errorf("index %d: expected %s, got %s", i, tt.want[i], got[i].Title)
				}
			}
		})
	}
}

func TestUpdatePartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", Draft{Title: "Buy milk", Description: strPtr("2%")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "alice", created.ID, Patch{Status: statusPtr(core.TaskStatusActioned)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != core.TaskStatusActioned {
		t.Fatalf("expected ACTIONED, got %s", updated.Status)
	}
	if updated.Title != "Buy milk" || updated.Description == nil || *updated.Description != "2%" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}

	if _, err := svc.Update(ctx, "alice", created.ID, Patch{Title: strPtr("")}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask for blank title, got %v", err)
	}
	if _, err := svc.Update(ctx, "alice", created.ID, Patch{Status: statusPtr("DONE")}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask for unknown status, got %v", err)
	}
}

func TestForeignTasksAreHidden(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", Draft{Title: "secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, "bob", task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "bob", task.ID, Patch{Title: strPtr("mine")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "bob", task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, "alice", task.ID); err != nil {
		t.Fatalf("Delete by owner: %v", err)
	}
	if _, err := svc.Get(ctx, "alice", task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
