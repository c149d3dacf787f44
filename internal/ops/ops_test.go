package ops

import (
	"testing"

	"github.com/hpungsan/hl/internal/errors"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantErr bool
	}{
		{"positive", 1, false},
		{"large", 1 << 40, false},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrValidation) {
					t.Errorf("ValidateID(%d) error = %v, want VALIDATION", tt.id, err)
				}
			} else if err != nil {
				t.Errorf("ValidateID(%d) error = %v, want nil", tt.id, err)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, DefaultRecentLimit},
		{"negative uses default", -1, DefaultRecentLimit},
		{"in range", 50, 50},
		{"above max", 500, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLimit(tt.limit, DefaultRecentLimit); got != tt.want {
				t.Errorf("clampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}
