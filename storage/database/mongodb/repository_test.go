package mongorepos_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/edupulse/storage/database/mongodb"
	"github.com/edupulse/edupulse/tests"
)

// TEST_MONGO_URI points at a mongo server, e.g. mongodb://localhost:27017.
// Each run works in a fresh database that is dropped afterwards.
func TestRepositories(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	db, err := mongorepos.Open(ctx, uri, "edupulse_test_"+uuid.NewString()[:8], 10*time.Second)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer func() {
		_ = db.Drop(ctx)
		_ = db.Client().Disconnect(ctx)
	}()

	testutil.RepositorySuite(t,
		mongorepos.NewUserRepository(db),
		mongorepos.NewCourseRepository(db),
		mongorepos.NewEnrollmentRepository(db),
	)
}

func TestOpen_connectTimeout(t *testing.T) {
	// nothing listens on port 1
	start := time.Now()
	_, err := mongorepos.Open(context.Background(), "mongodb://127.0.0.1:1", "edupulse_test", 200*time.Millisecond)
	if err == nil {
		t.Fatal("Open() error = nil, want a connection error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Open() gave up after %s, want about 200ms", elapsed)
	}
}
