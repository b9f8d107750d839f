package storage

import (
	"context"
	"testing"

	"github.com/edupulse/edupulse/tests"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()

	stores, err := Open(ctx, conf)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if stores.Engine != EngineMemory || stores.Users == nil || stores.Courses == nil || stores.Enrollments == nil {
		t.Errorf("Open() = %+v", stores)
	}
	if err = stores.Migrate(); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}
	if err = stores.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	conf.Database.Engine = "cassandra"
	if _, err = Open(ctx, conf); err == nil {
		t.Errorf("Open() with an unknown engine must fail")
	}
}
