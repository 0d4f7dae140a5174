package task

import (
	"fmt"
	"time"
)

// SeedCount is the number of demo tasks produced by Seed.
const SeedCount = 30

// Seed returns the demo data set relative to now. Task i (1-based) is due
// i-1 days from now and was created 31-i days ago; status and priority
// cycle through their enums.
func Seed(now time.Time) []Task {
	const day = 24 * time.Hour

	tasks := make([]Task, 0, SeedCount)
	for i := range SeedCount {
		created := now.Add(-time.Duration(SeedCount-i) * day)
		tasks = append(tasks, Task{
			ID:          int64(i + 1),
			Title:       fmt.Sprintf("Task %d", i+1),
			Description: fmt.Sprintf("Description for task %d. This is a sample task with some details.", i+1),
			Status:      Statuses[i%len(Statuses)],
			Priority:    Priorities[i%len(Priorities)],
			DueDate:     now.Add(time.Duration(i) * day),
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return tasks
}
