package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"250ms", 250 * time.Millisecond, false},
		{"1m30s", 90 * time.Second, false},
		{"0s", 0, false},
		{"-1s", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		D Duration `json:"d"`
	}{D: Duration(2 * time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2s"}`, string(out))

	var in struct {
		D Duration `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"150ms"}`), &in))
	assert.Equal(t, 150*time.Millisecond, in.D.Duration())
	assert.Equal(t, "150ms", in.D.String())

	assert.Error(t, json.Unmarshal([]byte(`{"d":150}`), &in))
}
