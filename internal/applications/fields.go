package applications

import (
	"time"

	"jobportal-backend/internal/access"
)

// Field names a patchable application attribute.
type Field string

const (
	FieldStatus           Field = "status"
	FieldNotes            Field = "notes"
	FieldNotificationRead Field = "notificationRead"
)

var fieldsByRole = map[access.Role]map[Field]bool{
	access.RoleJobseeker: {FieldNotificationRead: true},
	access.RoleCompany:   {FieldStatus: true, FieldNotes: true, FieldNotificationRead: true},
	access.RoleAdmin:     {FieldStatus: true, FieldNotes: true, FieldNotificationRead: true},
}

// CanEdit reports whether role may write field.
func CanEdit(role access.Role, field Field) bool {
	return fieldsByRole[role][field]
}

// Patch is the body of PATCH /applications/:id. Nil fields are absent.
type Patch struct {
	Status           *string `json:"status"`
	Notes            *string `json:"notes"`
	NotificationRead *bool   `json:"notificationRead"`
}

// Change is a role-filtered, validated patch ready to be applied atomically.
type Change struct {
	Status           *Status
	Notes            *string
	NotificationRead *bool
	At               time.Time
}

// NewChange drops fields role may not write and validates the rest.
func NewChange(role access.Role, p Patch, at time.Time) (Change, error) {
	ch := Change{At: at}
	if p.Status != nil && CanEdit(role, FieldStatus) {
		status, err := ParseStatus(*p.Status)
		if err != nil {
			return Change{}, err
		}
		ch.Status = &status
	}
	if p.Notes != nil && CanEdit(role, FieldNotes) {
		notes := *p.Notes
		ch.Notes = &notes
	}
	if p.NotificationRead != nil && CanEdit(role, FieldNotificationRead) {
		read := *p.NotificationRead
		ch.NotificationRead = &read
	}
	return ch, nil
}

// Empty reports whether nothing survived filtering.
func (c Change) Empty() bool {
	return c.Status == nil && c.Notes == nil && c.NotificationRead == nil
}

func (c Change) historyNotes() string {
	if c.Notes == nil {
		return ""
	}
	return *c.Notes
}

// Apply returns app with the change applied. A history entry is appended only
// when the status actually differs.
func (c Change) Apply(app Application) Application {
	history := make([]HistoryEntry, len(app.StatusHistory), len(app.StatusHistory)+1)
	copy(history, app.StatusHistory)
	app.StatusHistory = history

	if c.Status != nil && *c.Status != app.Status {
		app.StatusHistory = append(app.StatusHistory, HistoryEntry{
			Status:    *c.Status,
			Timestamp: c.At,
			Notes:     c.historyNotes(),
		})
		app.Status = *c.Status
	}
	if c.Notes != nil {
		app.Notes = *c.Notes
	}
	if c.NotificationRead != nil {
		app.NotificationRead = *c.NotificationRead
	}
	app.UpdatedAt = c.At
	return app
}
