package ban

import (
	"io"
	"testing"
	"time"

	"budgeter/internal/dbtest"
	"budgeter/internal/model"
	"budgeter/internal/store"

	"github.com/sirupsen/logrus"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock() time.Time { return testNow }

func newTestStore(t *testing.T) *store.UserStore {
	t.Helper()
	return store.NewUserStore(dbtest.New(t))
}

type banSnapshot struct {
	IsBanned    bool
	BanReason   *string
	BannedUntil *time.Time
	BannedBy    *int
}

func snapshot(u *model.User) banSnapshot {
	return banSnapshot{u.IsBanned, u.BanReason, u.BannedUntil, u.BannedBy}
}

type recordingNotifier struct {
	banned   []int
	unbanned []int
}

func (n *recordingNotifier) NotifyBanned(userID int, _ BanStatus) { n.banned = append(n.banned, userID) }
func (n *recordingNotifier) NotifyUnbanned(userID int)            { n.unbanned = append(n.unbanned, userID) }
