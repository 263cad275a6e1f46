package demo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads, restoring them after t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "COUNT_START", "COUNT_END", "COUNT_INTERVAL", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	want := &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		CountStart:    1,
		CountEnd:      50,
		CountInterval: 100 * time.Millisecond,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "demo.env")
	content := "LOG_LEVEL=debug\nLOG_FORMAT=json\nCOUNT_START=3\nCOUNT_END=5\nCOUNT_INTERVAL=1ms\nHTTP_ADDR=127.0.0.1:0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	// godotenv only fills unset variables.
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "COUNT_START", "COUNT_END", "COUNT_INTERVAL", "HTTP_ADDR"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := &Config{
		LogLevel:      "debug",
		LogFormat:     "json",
		CountStart:    3,
		CountEnd:      5,
		CountInterval: time.Millisecond,
		HTTPAddr:      "127.0.0.1:0",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load env file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"BadLevel", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"BadFormat", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"BadInt", map[string]string{"COUNT_START": "one"}, "COUNT_START"},
		{"BadDuration", map[string]string{"COUNT_INTERVAL": "soon"}, "COUNT_INTERVAL"},
		{"Backwards", map[string]string{"COUNT_START": "9", "COUNT_END": "2"}, "before COUNT_START"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
