package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slab-build/slab/internal/adapters/logger"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Info("building image")
	l.Warn("cache is cold")
	l.Error(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "building image")
	assert.Contains(t, out, "cache is cold")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
}
