// Package storage opens the repositories of the configured database engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
	"github.com/edupulse/edupulse/storage/database"
	dummydb "github.com/edupulse/edupulse/storage/database/dummy"
	mongorepos "github.com/edupulse/edupulse/storage/database/mongodb"
	sqlxrepos "github.com/edupulse/edupulse/storage/database/sqlx"
)

// Engines
const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongodb"
	EngineMemory   = "memory"
)

type Stores struct {
	Engine      string
	Users       user.Repository
	Courses     course.Repository
	Enrollments enrollment.Repository

	// SQL is only set for the postgres engine.
	SQL *sqlx.DB

	close func(ctx context.Context) error
}

// Open connects to conf.Database.Engine and builds its repositories.
// The postgres role and database are created when missing.
func Open(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Engine {
	case EnginePostgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Engine:      EnginePostgres,
			Users:       sqlxrepos.NewUserRepository(db),
			Courses:     sqlxrepos.NewCourseRepository(db),
			Enrollments: sqlxrepos.NewEnrollmentRepository(db),
			SQL:         db,
			close:       func(context.Context) error { return db.Close() },
		}, nil

	case EngineMongo:
		db, err := mongorepos.Open(ctx, conf.Database.MongoURI, conf.Database.Name, conf.Database.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Engine:      EngineMongo,
			Users:       mongorepos.NewUserRepository(db),
			Courses:     mongorepos.NewCourseRepository(db),
			Enrollments: mongorepos.NewEnrollmentRepository(db),
			close:       disconnect(db),
		}, nil

	case EngineMemory:
		db, err := dummydb.Open()
		if err != nil {
			return nil, err
		}
		return &Stores{
			Engine:      EngineMemory,
			Users:       dummydb.NewUserRepository(db),
			Courses:     dummydb.NewCourseRepository(db),
			Enrollments: dummydb.NewEnrollmentRepository(db),
			close:       func(context.Context) error { return nil },
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func disconnect(db *mongo.Database) func(ctx context.Context) error {
	return func(ctx context.Context) error { return db.Client().Disconnect(ctx) }
}

// Migrate applies the pending SQL migrations. Other engines have nothing to migrate.
func (s *Stores) Migrate() error {
	if s.SQL == nil {
		return nil
	}
	return database.Migrate(s.SQL)
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
