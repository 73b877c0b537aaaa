package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgeter/internal/dbtest"
	"budgeter/internal/model"
	"budgeter/internal/store"

	"github.com/google/go-cmp/cmp"
)

type banFields struct {
	IsBanned    bool
	BanReason   *string
	BannedUntil *time.Time
	BannedBy    *int
}

func fieldsOf(u *model.User) banFields {
	return banFields{u.IsBanned, u.BanReason, u.BannedUntil, u.BannedBy}
}

func newStore(t *testing.T) *store.UserStore {
	t.Helper()
	return store.NewUserStore(dbtest.New(t))
}

func mustCreate(t *testing.T, s *store.UserStore, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: "Test", PasswordHash: "x", Role: role}
	if err := s.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s) failed: %v", email, err)
	}
	return u
}

func TestCreate_DuplicateEmail(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, "dup@example.com", model.RoleUser)

	err := s.Create(context.Background(), &model.User{Email: "DUP@example.com", Name: "x", PasswordHash: "x"})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "Mixed@Example.com", model.RoleUser)

	got, err := s.GetByEmail(context.Background(), "mixed@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected user %d, got %d", created.ID, got.ID)
	}
	if got.Role != model.RoleUser {
		t.Errorf("Expected default role user, got %s", got.Role)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.GetByID(context.Background(), 9999)
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestSetBanAndClearBan(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	admin := mustCreate(t, s, "admin@example.com", model.RoleAdmin)
	u := mustCreate(t, s, "user@example.com", model.RoleUser)

	until := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := s.SetBan(ctx, u.ID, "spam", &until, admin.ID); err != nil {
		t.Fatalf("SetBan() failed: %v", err)
	}

	got, err := s.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !got.IsBanned || model.StrVal(got.BanReason) != "spam" || got.BannedBy == nil || *got.BannedBy != admin.ID {
		t.Errorf("Unexpected ban fields after SetBan: %+v", fieldsOf(got))
	}
	if got.BannedUntil == nil || !got.BannedUntil.Equal(until) {
		t.Errorf("Expected banned_until %v, got %v", until, got.BannedUntil)
	}

	if err := s.ClearBan(ctx, u.ID); err != nil {
		t.Fatalf("ClearBan() failed: %v", err)
	}
	got, _ = s.GetByID(ctx, u.ID)
	if diff := cmp.Diff(banFields{}, fieldsOf(got)); diff != "" {
		t.Errorf("ban fields after ClearBan mismatch (-want +got):\n%s", diff)
	}
}

func TestClearExpiredBan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		until       *time.Time
		wantCleared bool
	}{
		{"expired ban is cleared", ptrTime(now.Add(-time.Hour)), true},
		{"ban ending exactly now is cleared", ptrTime(now), true},
		{"active ban is kept", ptrTime(now.Add(time.Hour)), false},
		{"permanent ban is kept", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			u := mustCreate(t, s, "u@example.com", model.RoleUser)
			if err := s.SetBan(ctx, u.ID, "reason", tt.until, 1); err != nil {
				t.Fatalf("SetBan() failed: %v", err)
			}

			cleared, err := s.ClearExpiredBan(ctx, u.ID, now)
			if err != nil {
				t.Fatalf("ClearExpiredBan() failed: %v", err)
			}
			if cleared != tt.wantCleared {
				t.Errorf("Expected cleared=%v, got %v", tt.wantCleared, cleared)
			}

			got, _ := s.GetByID(ctx, u.ID)
			if got.IsBanned == tt.wantCleared {
				t.Errorf("Expected is_banned=%v, got %v", !tt.wantCleared, got.IsBanned)
			}
		})
	}
}

func TestClearExpiredBan_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := mustCreate(t, s, "race@example.com", model.RoleUser)
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	if err := s.SetBan(ctx, u.ID, "spam", &past, 1); err != nil {
		t.Fatalf("SetBan() failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ClearExpiredBan(ctx, u.ID, now); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent ClearExpiredBan() failed: %v", err)
	}

	got, _ := s.GetByID(ctx, u.ID)
	if diff := cmp.Diff(banFields{}, fieldsOf(got)); diff != "" {
		t.Errorf("ban fields mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdatePassword_ClearsForceReset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := mustCreate(t, s, "reset@example.com", model.RoleUser)

	if err := s.SetForcePasswordReset(ctx, u.ID, true); err != nil {
		t.Fatalf("SetForcePasswordReset() failed: %v", err)
	}
	got, _ := s.GetByID(ctx, u.ID)
	if !got.ForcePasswordReset {
		t.Fatal("Expected force_password_reset to be set")
	}

	if err := s.UpdatePassword(ctx, u.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePassword() failed: %v", err)
	}
	got, _ = s.GetByID(ctx, u.ID)
	if got.ForcePasswordReset {
		t.Error("Expected force_password_reset to be cleared")
	}
	if got.PasswordHash != "newhash" {
		t.Errorf("Expected password hash to be updated, got %q", got.PasswordHash)
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
