package services

import (
	"context"
	"errors"
	"testing"
)

func TestActivityLogServiceList(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	for i := 0; i < 5; i++ {
		if err := logActivity(ctx, f, 1, "subject.create", map[string]any{"n": i}); err != nil {
			t.Fatalf("logActivity() error = %v", err)
		}
	}
	svc := NewActivityLogService(f, testLogger())

	t.Run("admin lists entries", func(t *testing.T) {
		resp, err := svc.List(ctx, 1, 3, adminActor())
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if resp.Total != 5 {
			t.Errorf("Total = %d, want 5", resp.Total)
		}
		if len(resp.Entries) != 3 {
			t.Errorf("Entries = %d, want page of 3", len(resp.Entries))
		}
		if resp.Page != 1 || resp.Size != 3 {
			t.Errorf("Page/Size = %d/%d, want 1/3", resp.Page, resp.Size)
		}
	})

	t.Run("faculty is rejected", func(t *testing.T) {
		_, err := svc.List(ctx, 1, 10, facultyActor(2))
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Fatalf("List() error = %v, want PermissionError", err)
		}
	})
}
