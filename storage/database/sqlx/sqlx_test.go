package sqlxrepos

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
)

func TestQueries(t *testing.T) {
	tests := []struct {
		name     string
		query    sq.Sqlizer
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "users by role",
			query:    psql.Select("id").From("users").Where(userWhere(user.QueryFilter{Role: user.RoleStudent})).OrderBy(newestFirst...),
			wantSQL:  "SELECT id FROM users WHERE role = $1 ORDER BY created_at DESC, id DESC",
			wantArgs: []interface{}{user.RoleStudent},
		},
		{
			name:     "published courses",
			query:    psql.Select("id").From("courses").Where(courseWhere(course.QueryFilter{PublishedOnly: true})).OrderBy(newestFirst...),
			wantSQL:  "SELECT id FROM courses WHERE is_published = $1 ORDER BY created_at DESC, id DESC",
			wantArgs: []interface{}{true},
		},
		{
			name: "enrollments of a student in a course",
			query: psql.Select("id").From("enrollments").
				Where(enrollmentWhere(enrollment.QueryFilter{StudentID: "s1", CourseID: "c1"})).
				OrderBy(latestEnrolmentFirst...),
			wantSQL:  "SELECT id FROM enrollments WHERE course_id = $1 AND student_id = $2 ORDER BY enrolled_at DESC, id DESC",
			wantArgs: []interface{}{"c1", "s1"},
		},
		{
			name:     "course row lock",
			query:    psql.Select("id").From("courses").Where(sq.Eq{"id": "c1"}).Suffix("FOR UPDATE"),
			wantSQL:  "SELECT id FROM courses WHERE id = $1 FOR UPDATE",
			wantArgs: []interface{}{"c1"},
		},
		{
			name:     "delete course enrollments",
			query:    psql.Delete("enrollments").Where(enrollmentWhere(enrollment.QueryFilter{CourseID: "c1"})),
			wantSQL:  "DELETE FROM enrollments WHERE course_id = $1",
			wantArgs: []interface{}{"c1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, args, err := tt.query.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEmptyFilters(t *testing.T) {
	assert.Empty(t, userWhere(user.QueryFilter{}))
	assert.Empty(t, courseWhere(course.QueryFilter{}))
	assert.Empty(t, enrollmentWhere(enrollment.QueryFilter{}))
}
