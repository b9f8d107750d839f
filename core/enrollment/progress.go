package enrollment

import (
	"time"

	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core"
)

var ErrModuleNotFound = core.NewNotFoundError("module")

// Percentage returns round(100 * completed / total), rounding halves up.
// It is 0 when total is 0 and always within [0, 100].
func Percentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return (200*completed + total) / (2 * total)
}

// NewProgress seeds one incomplete entry per module.
func NewProgress(moduleIDs []string) []ModuleProgress {
	return lo.Map(moduleIDs, func(id string, _ int) ModuleProgress {
		return ModuleProgress{ModuleID: id}
	})
}

func (e Enrollment) CompletedCount() int {
	return lo.CountBy(e.Progress, func(p ModuleProgress) bool { return p.Completed })
}

// IsComplete reports whether the derived percentage reached 100.
func (e Enrollment) IsComplete() bool {
	return e.ProgressPercentage == 100
}

// SetModuleCompletion sets the completed flag of moduleID and recomputes the percentage.
// Completing stamps now; completing an already completed module keeps its first stamp.
// Un-completing clears the stamp. It reports whether anything changed.
func (e *Enrollment) SetModuleCompletion(moduleID string, completed bool, now time.Time) (bool, error) {
	_, idx, ok := lo.FindIndexOf(e.Progress, func(p ModuleProgress) bool { return p.ModuleID == moduleID })
	if !ok {
		return false, ErrModuleNotFound
	}

	entry := &e.Progress[idx]
	if entry.Completed == completed {
		return false, nil
	}
	entry.Completed = completed
	if completed {
		ts := now.UTC()
		entry.CompletedAt = &ts
	} else {
		entry.CompletedAt = nil
	}
	e.recompute(now)
	return true, nil
}

// recompute derives the percentage and the enrollment completion stamp from the progress entries.
func (e *Enrollment) recompute(now time.Time) {
	e.ProgressPercentage = Percentage(e.CompletedCount(), len(e.Progress))
	switch {
	case e.IsComplete() && e.CompletedAt == nil:
		ts := now.UTC()
		e.CompletedAt = &ts
	case !e.IsComplete():
		e.CompletedAt = nil
	}
}
