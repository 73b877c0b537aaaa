package ban

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgeter/internal/model"

	"github.com/google/go-cmp/cmp"
)

func newTestGate(t *testing.T) (*Gate, *testStoreHandle) {
	t.Helper()
	s := newTestStore(t)
	g := NewGate(s, testLogger())
	g.now = fixedClock
	return g, &testStoreHandle{t: t, s: s}
}

func TestGate_CheckLogin(t *testing.T) {
	ctx := context.Background()
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	tests := []struct {
		name       string
		ban        bool
		until      *time.Time
		wantErr    error
		wantBanned bool
	}{
		{"not banned", false, nil, nil, false},
		{"permanent ban denies", true, nil, ErrAuthDeniedBanned, true},
		{"future ban denies", true, &future, ErrAuthDeniedBanned, true},
		{"expired ban is lifted", true, &past, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := newTestGate(t)
			u := h.create("login@example.com", model.RoleUser)
			if tt.ban {
				h.ban(u.ID, "spam", tt.until)
			}

			err := g.CheckLogin(ctx, h.reload(u.ID))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckLogin() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrAuthDenied) {
				t.Errorf("Expected ban denial to wrap ErrAuthDenied")
			}
			if got := h.reload(u.ID).IsBanned; got != tt.wantBanned {
				t.Errorf("stored is_banned = %v, want %v", got, tt.wantBanned)
			}
		})
	}
}

func TestGate_CheckSession_ExpiredBanClearedByPoll(t *testing.T) {
	ctx := context.Background()
	g, h := newTestGate(t)

	u := &model.User{BaseModel: model.BaseModel{ID: 7}, Email: "seven@example.com", Name: "Seven", PasswordHash: "x"}
	if err := h.s.Create(ctx, u); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	past := testNow.Add(-time.Hour)
	h.ban(7, "spam", &past)

	_, status, err := g.CheckSession(ctx, 7)
	if err != nil {
		t.Fatalf("CheckSession() failed: %v", err)
	}
	if diff := cmp.Diff(BanStatus{}, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(banSnapshot{}, snapshot(h.reload(7))); diff != "" {
		t.Errorf("stored ban fields not cleared (-want +got):\n%s", diff)
	}
}

func TestGate_CheckSession_ActiveBan(t *testing.T) {
	ctx := context.Background()
	g, h := newTestGate(t)
	u := h.create("active@example.com", model.RoleUser)
	future := testNow.Add(24 * time.Hour)
	h.ban(u.ID, "abuse", &future)

	live, status, err := g.CheckSession(ctx, u.ID)
	if err != nil {
		t.Fatalf("CheckSession() failed: %v", err)
	}
	if !status.IsBanned {
		t.Fatal("Expected session to be reported as banned")
	}
	if model.StrVal(status.Reason) != "abuse" {
		t.Errorf("Expected reason 'abuse', got %q", model.StrVal(status.Reason))
	}
	if status.BannedUntil == nil || !status.BannedUntil.Equal(future) {
		t.Errorf("Expected bannedUntil %v, got %v", future, status.BannedUntil)
	}
	if live.ID != u.ID {
		t.Errorf("Expected live record for %d, got %d", u.ID, live.ID)
	}
}

func TestGate_CheckSession_UnknownUser(t *testing.T) {
	g, _ := newTestGate(t)
	_, _, err := g.CheckSession(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGate_Resolve_DoesNotClearReappliedBan(t *testing.T) {
	ctx := context.Background()
	g, h := newTestGate(t)
	u := h.create("reban@example.com", model.RoleUser)
	past := testNow.Add(-time.Hour)
	h.ban(u.ID, "old", &past)

	// The caller holds a stale copy with the expired ban while an admin
	// re-bans the user permanently.
	stale := h.reload(u.ID)
	h.ban(u.ID, "new", nil)

	status, err := g.Resolve(ctx, stale)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if status != NotBanned {
		t.Errorf("Resolve() on the stale copy = %v, want NOT_BANNED", status)
	}

	live := h.reload(u.ID)
	if !live.IsBanned || model.StrVal(live.BanReason) != "new" {
		t.Errorf("re-applied ban was cleared: %+v", snapshot(live))
	}
}

type testStoreHandle struct {
	t *testing.T
	s interface {
		Users
		Create(ctx context.Context, u *model.User) error
	}
}

func (h *testStoreHandle) create(email string, role model.Role) *model.User {
	h.t.Helper()
	u := &model.User{Email: email, Name: email, PasswordHash: "x", Role: role}
	if err := h.s.Create(context.Background(), u); err != nil {
		h.t.Fatalf("Create(%s) failed: %v", email, err)
	}
	return u
}

func (h *testStoreHandle) ban(id int, reason string, until *time.Time) {
	h.t.Helper()
	if err := h.s.SetBan(context.Background(), id, reason, until, 1); err != nil {
		h.t.Fatalf("SetBan(%d) failed: %v", id, err)
	}
}

func (h *testStoreHandle) reload(id int) *model.User {
	h.t.Helper()
	u, err := h.s.GetByID(context.Background(), id)
	if err != nil {
		h.t.Fatalf("GetByID(%d) failed: %v", id, err)
	}
	return u
}
