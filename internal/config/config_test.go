package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTeams(), cfg.Routing.Teams)
	assert.Equal(t, "helpdesk@example.com", cfg.Routing.DefaultAddress)
	assert.Equal(t, SLAWindowHours{Response: 1, Resolution: 4}, cfg.SLA.Windows["High"])
	assert.Equal(t, SLAWindowHours{Response: 4, Resolution: 24}, cfg.SLA.Windows["Medium"])
	assert.Equal(t, SLAWindowHours{Response: 24, Resolution: 72}, cfg.SLA.Windows["Low"])
	assert.Equal(t, SLAWindowHours{Response: 24, Resolution: 72}, cfg.SLA.Default)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval())
	assert.Equal(t, 30*time.Minute, cfg.Sweeper.NearBreachThreshold())
	assert.Equal(t, time.Minute, cfg.Intake.PollInterval())
	assert.False(t, cfg.Intake.AutoProcess)
	assert.False(t, cfg.Notification.SMTPConfigured())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TEAM_ASSIGNMENTS", "Networking=net@corp.test; General=desk@corp.test")
	t.Setenv("SLA_HIGH_HOURS", "2, 8")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "60")
	t.Setenv("SLA_NEAR_BREACH_MINUTES", "15")
	t.Setenv("AUTO_PROCESS", "true")
	t.Setenv("POLL_INTERVAL", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Networking": "net@corp.test",
		"General":    "desk@corp.test",
	}, cfg.Routing.Teams)
	assert.Equal(t, SLAWindowHours{Response: 2, Resolution: 8}, cfg.SLA.Windows["High"])
	assert.Equal(t, time.Minute, cfg.Sweeper.Interval())
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.NearBreachThreshold())
	assert.True(t, cfg.Intake.AutoProcess)
	assert.Equal(t, 10*time.Second, cfg.Intake.PollInterval())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string][2]string{
		"redis db":       {"REDIS_DB", "zero"},
		"sla pair":       {"SLA_LOW_HOURS", "24"},
		"sla negative":   {"SLA_MEDIUM_HOURS", "-1,4"},
		"team entry":     {"TEAM_ASSIGNMENTS", "Networking"},
		"empty team map": {"TEAM_ASSIGNMENTS", " ; "},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
