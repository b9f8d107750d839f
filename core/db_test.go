package core

import "testing"

func TestDBOrdering(t *testing.T) {
	tests := []struct {
		ord     DBOrdering
		wantSQL string
		wantDir int
	}{
		{ord: DBOrdering{Field: "created_at"}, wantSQL: "created_at DESC", wantDir: -1},
		{ord: DBOrdering{Field: "name", Ascending: true}, wantSQL: "name ASC", wantDir: 1},
	}
	for _, tt := range tests {
		t.Run(tt.wantSQL, func(t *testing.T) {
			if got := tt.ord.String(); got != tt.wantSQL {
				t.Errorf("String() = %s, want %s", got, tt.wantSQL)
			}
			if got := tt.ord.Direction(); got != tt.wantDir {
				t.Errorf("Direction() = %d, want %d", got, tt.wantDir)
			}
		})
	}
}
