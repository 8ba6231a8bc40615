package profile

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateDefaults checks the zero profile is filled with defaults.
func TestValidateDefaults(t *testing.T) {
	profile := &Profile{}
	require.NoError(t, profile.Validate())

	tests := []struct {
		name     string
		expected any
		actual   any
	}{
		{"Mode falls back to demo", "demo", profile.Mode},
		{"Port default", 3000, profile.Port},
		{"Driver default", "memory", profile.Driver},
		{"QueueSize default", 1024, profile.QueueSize},
		{"StreamBuffer default", 256, profile.StreamBuffer},
		{"RateLimit disabled", 0.0, profile.RateLimit},
		{"LogFormat text outside prod", "text", profile.LogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actual)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
		check   func(t *testing.T, p *Profile)
	}{
		{
			name:    "prod defaults to json logs",
			profile: Profile{Mode: "prod"},
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "json", p.LogFormat)
				assert.False(t, p.IsDev())
			},
		},
		{
			name:    "explicit log format is normalised",
			profile: Profile{Mode: "prod", LogFormat: "TEXT"},
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "text", p.LogFormat)
			},
		},
		{
			name:    "rate burst derived from limit",
			profile: Profile{RateLimit: 50},
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 100, p.RateBurst)
			},
		},
		{
			name:    "fractional rate gets burst of one",
			profile: Profile{RateLimit: 0.2},
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, 1, p.RateBurst)
			},
		},
		{
			name:    "negative rate rejected",
			profile: Profile{RateLimit: -1},
			wantErr: true,
		},
		{
			name:    "port out of range rejected",
			profile: Profile{Port: 70000},
			wantErr: true,
		},
		{
			name:    "unknown log format rejected",
			profile: Profile{LogFormat: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, &p)
		})
	}
}

func TestAddressAndLevel(t *testing.T) {
	p := &Profile{Addr: "127.0.0.1", Port: 3000, LogLevel: "DEBUG"}
	assert.Equal(t, "127.0.0.1:3000", p.Address())
	assert.Equal(t, slog.LevelDebug, p.SlogLevel())

	p.LogLevel = "bogus"
	assert.Equal(t, slog.LevelInfo, p.SlogLevel())
}
