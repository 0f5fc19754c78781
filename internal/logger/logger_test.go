package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	entry := Logger().WithComponent("evaluate")
	assert.Equal(t, "evaluate", entry.Entry.Data["component"])
}

func TestConfigure(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	assert.Error(t, log.Configure("loud", "json", "stdout", 0))
	assert.Error(t, log.Configure("info", "xml", "stdout", 0))

	require.NoError(t, log.Configure("debug", "text", "stderr", 0))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	path := filepath.Join(t.TempDir(), "hpe.log")
	require.NoError(t, log.Configure("warn", "json", path, 0))
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestConfigureEnvOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	log := Logger()
	require.NoError(t, log.Configure("debug", "json", "stdout", 0))
	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())
}

func TestJSONFieldNames(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.WithComponent("store").WithFields(Fields{"name": "drying"}).Warn("duplicate profile")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "duplicate profile", line["message"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "store", line["component"])
	assert.Equal(t, "drying", line["name"])
	assert.Contains(t, line, "timestamp")
}
