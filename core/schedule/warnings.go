package schedule

import (
	"fmt"
	"time"
)

// ContainerDeadlines carries the soft deadlines of one container, as reported
// by the inventory system. Nil deadlines are simply not checked.
type ContainerDeadlines struct {
	Number              string
	ExtractionDeadline  *time.Time
	FreeStorageDeadline *time.Time
}

// DeadlineWarnings compares the plan's end against each container's soft
// deadlines and returns one advisory message per missed deadline. Warnings
// never block a save; the caller decides how to surface them.
func DeadlineWarnings(planEnd time.Time, containers []ContainerDeadlines) []string {
	var out []string
	for _, c := range containers {
		if c.ExtractionDeadline != nil && planEnd.After(*c.ExtractionDeadline) {
			out = append(out, fmt.Sprintf(
				"container %s: plan ends after its extraction deadline (%s)",
				c.Number, c.ExtractionDeadline.Format(time.RFC3339)))
		}
		if c.FreeStorageDeadline != nil && planEnd.After(*c.FreeStorageDeadline) {
			out = append(out, fmt.Sprintf(
				"container %s: free storage period expires before the plan ends (%s)",
				c.Number, c.FreeStorageDeadline.Format(time.RFC3339)))
		}
	}
	return out
}
