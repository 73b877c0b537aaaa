package audit

import (
	"context"
	"encoding/json"

	"budgeter/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is a single authentication outcome
type Event struct {
	Type     model.AuthEventType
	UserID   *int
	Email    string
	RemoteIP string
	Details  map[string]interface{}
}

// Recorder writes authentication events to the log and the auth_events table
type Recorder struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewRecorder creates a new audit recorder. db may be nil to log only.
func NewRecorder(db *gorm.DB, logger *logrus.Entry) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.WithField("component", "audit"),
	}
}

// Record logs e and stores it. A failed insert is logged and otherwise
// ignored so that auditing never changes a login outcome.
func (r *Recorder) Record(ctx context.Context, e Event) {
	fields := logrus.Fields{
		"event":     string(e.Type),
		"email":     e.Email,
		"remote_ip": e.RemoteIP,
		"outcome":   outcomeOf(e.Type),
	}
	if e.UserID != nil {
		fields["user_id"] = *e.UserID
	}
	for k, v := range e.Details {
		fields[k] = v
	}

	entry := r.logger.WithFields(fields)
	if e.Type == model.AuthEventLoginSucceeded {
		entry.Info("Login succeeded")
	} else {
		entry.Warn("Login denied")
	}

	if r.db == nil {
		return
	}

	row := model.AuthEvent{
		Event:    e.Type,
		UserID:   e.UserID,
		Email:    e.Email,
		RemoteIP: e.RemoteIP,
	}
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			r.logger.WithError(err).Error("Failed to encode audit details")
		} else {
			row.Details = datatypes.JSON(raw)
		}
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.logger.WithError(err).WithField("event", string(e.Type)).Error("Failed to store audit event")
	}
}

// Recent returns the latest events for a user, newest first
func (r *Recorder) Recent(ctx context.Context, userID int, limit int) ([]model.AuthEvent, error) {
	var events []model.AuthEvent
	if r.db == nil {
		return events, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func outcomeOf(t model.AuthEventType) string {
	if t == model.AuthEventLoginSucceeded {
		return "allowed"
	}
	return "denied"
}
