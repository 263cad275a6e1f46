package demo

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centraunit/labelwire"
)

func testConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		CountStart: 1,
		CountEnd:   3,
	}
}

func newTestContainer(t *testing.T, cfg *Config, out *bytes.Buffer) *labelwire.Container {
	t.Helper()
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, out)
	c := labelwire.New(labelwire.WithLogger(logger))
	require.NoError(t, Register(c, cfg, logger))
	return c
}

func TestApp_Start(t *testing.T) {
	var out bytes.Buffer
	c := newTestContainer(t, testConfig(), &out)

	app, err := labelwire.Resolve[*App](c, "app")
	require.NoError(t, err)
	require.NoError(t, app.Start(context.Background()))

	assert.Equal(t, 3, strings.Count(out.String(), "I waited!"))

	counter, err := labelwire.Resolve[*Counter](c, "counter")
	require.NoError(t, err)
	assert.Same(t, app.counter, counter)
	assert.Equal(t, int64(3), counter.Current())
	assert.True(t, counter.Done())
}

func TestApp_StartCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.CountEnd = 1000
	cfg.CountInterval = time.Hour

	var out bytes.Buffer
	c := newTestContainer(t, cfg, &out)
	app, err := labelwire.Resolve[*App](c, "app")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = app.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, app.counter.Done())
	assert.Equal(t, int64(1), app.counter.Current())
}

func TestRegister_Graph(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig()
	c := newTestContainer(t, cfg, &out)

	got, err := labelwire.Resolve[*Config](c, "config")
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	views, err := c.ResolveAll("view|scoped")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.IsType(t, &RequestInfo{}, views[0])
	assert.IsType(t, &Status{}, views[1])
	assert.Equal(t, views[0].(*RequestInfo).ID, views[1].(*Status).RequestID)
}

func TestNewApp_RequiresDependencies(t *testing.T) {
	c := labelwire.New()
	require.NoError(t, c.Singleton("app", NewApp))

	_, err := c.Resolve("app")
	var unresolved *labelwire.UnresolvedLabelError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "counter", unresolved.Expression)
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	log := NewLogger("warn", "json", &out)
	log.Info("hidden")
	log.Warn("shown", "key", "value")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Contains(t, out.String(), `"key":"value"`)
}
