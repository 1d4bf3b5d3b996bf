package icecast

import (
	"encoding/json"
	"testing"
)

func TestCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{`42`, 42},
		{`"42"`, 42},
		{`""`, 0},
		{`null`, 0},
		{`-3`, 0},
		{`"1e12"`, MaxCount},
		{`18446744073709551616`, MaxCount},
	}
	for _, tt := range tests {
		var c Count
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if c != tt.want {
			t.Errorf("%s: got %d; want %d", tt.in, c, tt.want)
		}
	}

	for _, bad := range []string{`"many"`, `"NaN"`} {
		var c Count
		if err := json.Unmarshal([]byte(bad), &c); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}
