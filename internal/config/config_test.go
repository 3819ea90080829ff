package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-markdown-view/internal/style"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "view.yaml", `
addr: 127.0.0.1:9000
theme: dark
padding:
  all: 8
  top: 20
writeBack: true
headless:
  width: 300
  timeout: 5s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.True(t, cfg.WriteBack)
	assert.Equal(t, 300, cfg.Headless.Width)
	assert.Equal(t, "500ms", cfg.Poll, "defaults survive for absent keys")

	theme, err := cfg.ThemeOverride()
	require.NoError(t, err)
	require.NotNil(t, theme)
	assert.Equal(t, style.Dark, *theme)

	in := cfg.Padding.Resolve()
	assert.Equal(t, 20.0, *in[style.Top])
	assert.Equal(t, 8.0, *in[style.Left])

	timeout, err := cfg.Headless.LoadTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "work.yml", "theme: light\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("work")
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	tests := []struct {
		name    string
		arg     string
		body    string
		wantErr error
	}{
		{name: "empty name", arg: "", wantErr: ErrEmptyConfigName},
		{name: "missing name", arg: "absent", wantErr: ErrConfigNotFound},
		{name: "missing path", arg: filepath.Join(dir, "nope.yaml"), wantErr: ErrConfigNotFound},
		{name: "unknown field", arg: "unknown.yaml", body: "colour: red\n", wantErr: ErrConfigParse},
		{name: "bad theme", arg: "theme.yaml", body: "theme: sepia\n", wantErr: ErrInvalidConfig},
		{name: "negative padding", arg: "pad.yaml", body: "padding:\n  left: -1\n", wantErr: ErrInvalidConfig},
		{name: "bad poll", arg: "poll.yaml", body: "poll: soon\n", wantErr: ErrInvalidConfig},
		{name: "bad timeout", arg: "timeout.yaml", body: "headless:\n  timeout: -1s\n", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg := tt.arg
			if tt.body != "" {
				arg = writeConfig(t, dir, tt.arg, tt.body)
			}
			_, err := LoadConfig(arg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestThemeOverrideAuto(t *testing.T) {
	for _, v := range []string{"", "auto", "AUTO"} {
		cfg := &Config{Theme: v}
		theme, err := cfg.ThemeOverride()
		require.NoError(t, err)
		assert.Nil(t, theme, v)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
