package core

import (
	"testing"
	"time"
)

func TestNewConfig_connectTimeout(t *testing.T) {
	t.Setenv("ENV", "TEST")

	if got := NewConfig().Database.ConnectTimeout; got != 10*time.Second {
		t.Errorf("Database.ConnectTimeout = %s, want the 10s default", got)
	}

	t.Setenv("TEST_DATABASE_CONNECTTIMEOUT", "3s")
	if got := NewConfig().Database.ConnectTimeout; got != 3*time.Second {
		t.Errorf("Database.ConnectTimeout = %s, want 3s from the environment", got)
	}
}
