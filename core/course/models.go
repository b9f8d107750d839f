package course

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Module is one unit of course content. Duration is in minutes.
type Module struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Content     string `json:"content" bson:"content"`
	VideoURL    string `json:"video_url,omitempty" bson:"video_url,omitempty"`
	Duration    int    `json:"duration" bson:"duration"`
	Order       int    `json:"order" bson:"order"`
}

type Course struct {
	ID               string    `json:"id" bson:"_id"`
	Title            string    `json:"title" bson:"title"`
	Description      string    `json:"description" bson:"description"`
	Category         string    `json:"category" bson:"category"`
	Level            Level     `json:"level" bson:"level"`
	Thumbnail        string    `json:"thumbnail" bson:"thumbnail"` // blob store reference
	InstructorID     string    `json:"instructor_id" bson:"instructor_id"`
	Modules          []Module  `json:"modules" bson:"modules"`
	EnrolledStudents []string  `json:"enrolled_students" bson:"enrolled_students"`
	IsPublished      bool      `json:"is_published" bson:"is_published"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// SortedModules returns a copy of the modules stable-sorted by Order.
// Orders may repeat or have gaps; ties keep their stored position.
func (c Course) SortedModules() []Module {
	modules := make([]Module, len(c.Modules))
	copy(modules, c.Modules)
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].Order < modules[j].Order })
	return modules
}

// ModuleIDs returns the module identifiers in traversal order.
func (c Course) ModuleIDs() []string {
	return lo.Map(c.SortedModules(), func(m Module, _ int) string { return m.ID })
}

// TotalDuration returns the sum of the module durations in minutes.
func (c Course) TotalDuration() int {
	return lo.SumBy(c.Modules, func(m Module) int { return m.Duration })
}

func (c Course) HasStudent(studentID string) bool {
	return lo.Contains(c.EnrolledStudents, studentID)
}

// AddStudent appends studentID to the enrolled set.
func (c *Course) AddStudent(studentID string) {
	c.EnrolledStudents = append(c.EnrolledStudents, studentID)
}

// RemoveStudent removes exactly one occurrence of studentID and reports whether one was found.
func (c *Course) RemoveStudent(studentID string) bool {
	idx := lo.IndexOf(c.EnrolledStudents, studentID)
	if idx < 0 {
		return false
	}
	c.EnrolledStudents = append(c.EnrolledStudents[:idx:idx], c.EnrolledStudents[idx+1:]...)
	return true
}

// FormatDuration renders minutes as "1h 30m", "2h" or "45m".
func FormatDuration(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	hours, minutes := totalMinutes/60, totalMinutes%60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// NewModule describes a module in a create or update request.
// ID is only meaningful on updates: an ID matching an existing module keeps that identity.
type NewModule struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Content     string `json:"content" validate:"required"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Duration    int    `json:"duration" validate:"min=0"`
	Order       int    `json:"order"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required,max=100"`
	Level       Level       `json:"level" validate:"required,courselevel"`
	Thumbnail   string      `json:"thumbnail"`
	Modules     []NewModule `json:"modules" validate:"required,min=1,dive"`
	IsPublished bool        `json:"is_published"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	cleanModules(nc.Modules)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Absent fields are left untouched; a non-empty Modules list replaces the stored one.
type UpdateCourse struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,min=1"`
	Category    *string     `json:"category" validate:"omitempty,min=1,max=100"`
	Level       *Level      `json:"level" validate:"omitempty,courselevel"`
	Thumbnail   *string     `json:"thumbnail"`
	Modules     []NewModule `json:"modules" validate:"omitempty,min=1,dive"`
	IsPublished *bool       `json:"is_published"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	for _, s := range []*string{uc.Title, uc.Description, uc.Category, uc.Thumbnail} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	cleanModules(uc.Modules)
	return validate.Struct(uc)
}

// apply copies the provided fields onto crs.
func (uc UpdateCourse) apply(crs *Course) error {
	if uc.Title != nil {
		crs.Title = *uc.Title
	}
	if uc.Description != nil {
		crs.Description = *uc.Description
	}
	if uc.Category != nil {
		crs.Category = *uc.Category
	}
	if uc.Level != nil {
		crs.Level = *uc.Level
	}
	if uc.Thumbnail != nil {
		crs.Thumbnail = *uc.Thumbnail
	}
	if uc.IsPublished != nil {
		crs.IsPublished = *uc.IsPublished
	}
	if len(uc.Modules) > 0 {
		modules, err := buildModules(uc.Modules, crs.Modules)
		if err != nil {
			return err
		}
		crs.Modules = modules
	}
	return nil
}

func cleanModules(modules []NewModule) {
	for i := range modules {
		modules[i].Title = core.CleanString(modules[i].Title)
		modules[i].VideoURL = core.CleanString(modules[i].VideoURL)
	}
}

// buildModules turns validated module inputs into Modules, keeping the IDs of existing modules
// and assigning fresh ones to everything else.
func buildModules(inputs []NewModule, existing []Module) ([]Module, error) {
	var modules []Module
	if err := copier.Copy(&modules, &inputs); err != nil {
		return nil, err
	}
	known := lo.KeyBy(existing, func(m Module) string { return m.ID })
	seen := make(map[string]bool, len(modules))
	for i := range modules {
		id := modules[i].ID
		if _, ok := known[id]; !ok || seen[id] {
			id = uuid.NewString()
		}
		modules[i].ID = id
		seen[id] = true
	}
	return modules, nil
}

type QueryFilter struct {
	InstructorID  string
	PublishedOnly bool
}
