// Package dummydb is an in-memory store used by tests and by the "memory" database engine.
package dummydb

import (
	"sync"
	"time"

	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		enrollment *enrollmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enrollment.Enrollment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[string]*enrollment.Enrollment)},
	}
	return db, nil
}

// Flush empties every table.
func (db *DB) Flush() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.course.Lock()
	db.course.table = make(map[string]*course.Course)
	db.course.Unlock()

	db.enrollment.Lock()
	db.enrollment.table = make(map[string]*enrollment.Enrollment)
	db.enrollment.Unlock()
}

// newerFirst orders by descending timestamp, then by descending id when the timestamps are equal.
func newerFirst(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}
