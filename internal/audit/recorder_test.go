package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"budgeter/internal/dbtest"
	"budgeter/internal/model"

	"github.com/sirupsen/logrus"
)

func newTestRecorder(t *testing.T) (*Recorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	return NewRecorder(dbtest.New(t), logrus.NewEntry(l)), &buf
}

func TestRecord_StoresAndLogs(t *testing.T) {
	ctx := context.Background()
	r, buf := newTestRecorder(t)

	r.Record(ctx, Event{
		Type:     model.AuthEventLoginDeniedBanned,
		UserID:   model.IntPtr(42),
		Email:    "u42@example.com",
		RemoteIP: "10.0.0.1",
		Details:  map[string]interface{}{"ban_reason": "spam"},
	})

	events, err := r.Recent(ctx, 42, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Event != model.AuthEventLoginDeniedBanned {
		t.Errorf("Expected event %s, got %s", model.AuthEventLoginDeniedBanned, events[0].Event)
	}
	var details map[string]string
	if err := json.Unmarshal(events[0].Details, &details); err != nil {
		t.Fatalf("details are not JSON: %v", err)
	}
	if details["ban_reason"] != "spam" {
		t.Errorf("Expected ban_reason spam, got %v", details)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["event"] != "login_denied_banned" || entry["outcome"] != "denied" || entry["level"] != "warning" {
		t.Errorf("Unexpected log entry: %v", entry)
	}
}

func TestRecord_UnknownUser(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRecorder(t)

	r.Record(ctx, Event{Type: model.AuthEventLoginDeniedCredential, Email: "nobody@example.com"})

	var count int64
	if err := r.db.Model(&model.AuthEvent{}).Where("user_id IS NULL").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 anonymous event, got %d", count)
	}
}

func TestRecord_WithoutDatabase(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	r := NewRecorder(nil, logrus.NewEntry(l))

	r.Record(context.Background(), Event{Type: model.AuthEventLoginSucceeded, UserID: model.IntPtr(1)})

	if !strings.Contains(buf.String(), "Login succeeded") {
		t.Errorf("Expected success log line, got %q", buf.String())
	}
}
