package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/taskboard/events"
	"github.com/example/taskboard/internal/monotest"
	"github.com/rs/zerolog"
)

func TestActivityModule_RecordsEvents(t *testing.T) {
	m := NewModule(zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: 31, Title: "Write docs", Priority: "high", CreatedAt: at}, nil); err != nil {
		t.Fatalf("handleTaskCreated() error = %v", err)
	}
	if err := m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: 31, Title: "Write docs", Fields: []string{"status", "priority"}, UpdatedAt: at.Add(time.Minute)}, nil); err != nil {
		t.Fatalf("handleTaskUpdated() error = %v", err)
	}
	if err := m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: 31, DeletedAt: at.Add(2 * time.Minute)}, nil); err != nil {
		t.Fatalf("handleTaskDeleted() error = %v", err)
	}

	got := m.Recent(0)
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(got))
	}

	wantTypes := []string{TypeTaskDeleted, TypeTaskUpdated, TypeTaskCreated}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Errorf("Recent()[%d].Type = %s, want %s", i, got[i].Type, want)
		}
		if got[i].ID == "" {
			t.Errorf("Recent()[%d].ID is empty", i)
		}
	}
	if !strings.Contains(got[1].Message, "status, priority") {
		t.Errorf("update message = %q, want changed fields listed", got[1].Message)
	}
	if !got[2].Timestamp.Equal(at) {
		t.Errorf("created timestamp = %v, want %v", got[2].Timestamp, at)
	}
}

func TestActivityModule_Bounded(t *testing.T) {
	m := NewModule(zerolog.Nop())
	for i := 1; i <= MaxEntries+25; i++ {
		m.record(TypeTaskCreated, int64(i), "t", "created", time.Time{})
	}

	got := m.Recent(0)
	if len(got) != MaxEntries {
		t.Fatalf("Recent() returned %d entries, want %d", len(got), MaxEntries)
	}
	if got[0].TaskID != MaxEntries+25 {
		t.Errorf("newest TaskID = %d, want %d", got[0].TaskID, MaxEntries+25)
	}
	if got[len(got)-1].TaskID != 26 {
		t.Errorf("oldest TaskID = %d, want 26", got[len(got)-1].TaskID)
	}
}

func TestActivityModule_ListActivityLimit(t *testing.T) {
	m := NewModule(zerolog.Nop())
	for i := 1; i <= 5; i++ {
		m.record(TypeTaskUpdated, int64(i), "t", "updated", time.Time{})
	}

	resp, err := m.handleListActivity(context.Background(), ListActivityRequest{Limit: 2}, nil)
	if err != nil {
		t.Fatalf("handleListActivity() error = %v", err)
	}
	if resp.Total != 2 || len(resp.Entries) != 2 {
		t.Fatalf("handleListActivity() = %d entries, want 2", len(resp.Entries))
	}
	if resp.Entries[0].TaskID != 5 || resp.Entries[1].TaskID != 4 {
		t.Errorf("entries = [%d %d], want [5 4]", resp.Entries[0].TaskID, resp.Entries[1].TaskID)
	}
}

func TestActivityModule_ConsumesPublishedEvents(t *testing.T) {
	m := NewModule(zerolog.Nop())
	bus := monotest.NewBus()
	if err := m.RegisterEventConsumers(bus.Registry()); err != nil {
		t.Fatalf("RegisterEventConsumers() error = %v", err)
	}
	container := monotest.NewContainer()
	if err := m.RegisterServices(container); err != nil {
		t.Fatalf("RegisterServices() error = %v", err)
	}
	port := NewActivityAdapter(container)
	ctx := context.Background()

	entries, err := port.ListActivity(ctx, 0)
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("ListActivity() on an empty feed = %v, want empty slice", entries)
	}

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{TaskID: 7, Title: "Plan sprint", Priority: "low", CreatedAt: at}, nil); err != nil {
		t.Fatalf("publish TaskCreated: %v", err)
	}
	if err := events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{TaskID: 7, Title: "Plan sprint", Fields: []string{"title"}, UpdatedAt: at.Add(time.Minute)}, nil); err != nil {
		t.Fatalf("publish TaskUpdated: %v", err)
	}
	if err := events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{TaskID: 7, DeletedAt: at.Add(2 * time.Minute)}, nil); err != nil {
		t.Fatalf("publish TaskDeleted: %v", err)
	}

	entries, err = port.ListActivity(ctx, 2)
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListActivity(2) returned %d entries, want 2", len(entries))
	}
	if entries[0].Type != TypeTaskDeleted || entries[1].Type != TypeTaskUpdated {
		t.Errorf("types = [%s %s], want [%s %s]", entries[0].Type, entries[1].Type, TypeTaskDeleted, TypeTaskUpdated)
	}
	if entries[0].Message != "Task 7 deleted" {
		t.Errorf("delete message = %q", entries[0].Message)
	}
	if !entries[1].Timestamp.Equal(at.Add(time.Minute)) {
		t.Errorf("update timestamp = %v, want %v", entries[1].Timestamp, at.Add(time.Minute))
	}

	all := m.Recent(0)
	if len(all) != 3 || all[2].Message != "Task 'Plan sprint' created with low priority" {
		t.Errorf("Recent() = %+v, want three entries ending with the create", all)
	}
}
