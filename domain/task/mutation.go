package task

import (
	"fmt"
	"strings"
	"time"
)

// Draft holds the caller-supplied fields of a task being created.
// Zero values fall back to the documented defaults.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Build validates the draft and returns the task it describes, without an id.
func (d Draft) Build(now time.Time) (Task, error) {
	if strings.TrimSpace(d.Title) == "" {
		return Task{}, invalid("title", "Title is required")
	}

	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		DueDate:     now.Add(DefaultDueIn),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if d.DueDate != nil {
		t.DueDate = *d.DueDate
	}

	if err := validateEnums(t.Status, t.Priority); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Validate rejects supplied fields that would leave the task invalid.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title", "Title cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", fmt.Sprintf("Invalid status: %s", *p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", fmt.Sprintf("Invalid priority: %s", *p.Priority))
	}
	return nil
}

// Apply copies the supplied fields onto t and refreshes UpdatedAt.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	t.UpdatedAt = now
}

// Fields returns the json names of the supplied fields.
func (p Patch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	return fields
}

// ParseDueDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("dueDate", fmt.Sprintf("Invalid dueDate: %s", s))
}

func validateEnums(s Status, p Priority) error {
	if !s.Valid() {
		return invalid("status", fmt.Sprintf("Invalid status: %s", s))
	}
	if !p.Valid() {
		return invalid("priority", fmt.Sprintf("Invalid priority: %s", p))
	}
	return nil
}
