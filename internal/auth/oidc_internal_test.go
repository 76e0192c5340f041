package auth

import (
	"slices"
	"testing"
)

func TestClaimValues(t *testing.T) {
	tests := []struct {
		name  string
		claim any
		want  []string
	}{
		{"string", "admin", []string{"admin"}},
		{"array", []any{"clinician", "admin", 3}, []string{"clinician", "admin"}},
		{"missing", nil, nil},
		{"number", 42.0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claimValues(tt.claim); !slices.Equal(got, tt.want) {
				t.Errorf("claimValues = %v, want %v", got, tt.want)
			}
		})
	}
}
