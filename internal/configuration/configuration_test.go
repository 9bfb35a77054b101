package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	config, err := Parse(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "http://localhost:8080", config.ServiceURL)
	assert.Equal(t, 60*time.Second, config.Timeout())
	assert.Equal(t, time.Second, config.Chat.FollowUpDelay())
	assert.Len(t, config.Chat.QuickActions, 4)
	assert.Equal(t, 3030, config.Web.Port)
}

func TestParseMergesDefaultsIntoPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"service_url": "http://cars.internal:9000", "request_timeout": -1, "chat": {"quick_actions": ["Any SUV"]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "http://cars.internal:9000", config.ServiceURL)
	assert.Equal(t, time.Duration(0), config.Timeout())
	assert.Equal(t, []string{"Any SUV"}, config.Chat.QuickActions)
	assert.Equal(t, "03:04 PM", config.Chat.TimeFormat)
	require.NotNil(t, config.Web)
	assert.Equal(t, 256, config.Web.MaxSessions)

	// Defaults are not shared between parses.
	config.Chat.TimeFormat = "15:04"
	assert.Equal(t, "03:04 PM", Default().Chat.TimeFormat)
}

func TestParseEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(envServiceURL, "http://override:1234")
	t.Setenv(envRequestTimeout, "5")
	t.Setenv(envPort, "8081")

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:1234", config.ServiceURL)
	assert.Equal(t, 5*time.Second, config.Timeout())
	assert.Equal(t, 8081, config.Web.Port)
}

func TestParseRejectsBadEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(envPort, "not-a-port")

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service_url":`), 0644))

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/.config/carscout")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/carscout"), expanded)

	unchanged, err := ExpandPath("/etc/carscout")
	require.NoError(t, err)
	assert.Equal(t, "/etc/carscout", unchanged)
}
