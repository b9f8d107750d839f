package dummydb_test

import (
	"testing"

	"github.com/edupulse/edupulse/storage/database/dummy"
	"github.com/edupulse/edupulse/tests"
)

func TestRepositorySuite(t *testing.T) {
	db, _ := dummydb.Open()
	testutil.RepositorySuite(t, dummydb.NewUserRepository(db), dummydb.NewCourseRepository(db), dummydb.NewEnrollmentRepository(db))
}
