package enrollment

import (
	"time"

	"github.com/edupulse/edupulse/core/course"
)

// ModuleProgress tracks one module of the course snapshot taken at enrollment time.
type ModuleProgress struct {
	ModuleID    string     `json:"module_id" bson:"module_id"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"` // UTC
}

type Enrollment struct {
	ID                 string           `json:"id" bson:"_id"`
	StudentID          string           `json:"student_id" bson:"student_id"`
	CourseID           string           `json:"course_id" bson:"course_id"`
	Progress           []ModuleProgress `json:"progress" bson:"progress"`
	ProgressPercentage int              `json:"progress_percentage" bson:"progress_percentage"`
	Version            int              `json:"version" bson:"version"`
	EnrolledAt         time.Time        `json:"enrolled_at" bson:"enrolled_at"`                       // UTC
	CompletedAt        *time.Time       `json:"completed_at,omitempty" bson:"completed_at,omitempty"` // UTC
}

// Detail is an Enrollment with its Course attached. Course is nil when the course no longer exists.
type Detail struct {
	Enrollment
	Course *course.Course `json:"course"`
}

type QueryFilter struct {
	StudentID string
	CourseID  string
}

// SetCompletion is the body of a module completion toggle.
type SetCompletion struct {
	Completed *bool `json:"completed" validate:"required"`
}
