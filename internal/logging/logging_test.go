package logging

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter_LevelAndFormat(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   logrus.Level
		json   bool
	}{
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"warn json", "warn", "json", logrus.WarnLevel, true},
		{"unknown level falls back to info", "loud", "text", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := l.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.want, adapter.logger.Level)
			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.json, isJSON)
		})
	}
}

func TestLogrusAdapter_WritesFields(t *testing.T) {
	base := logrus.New()
	var buf bytes.Buffer
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	l := NewLogrusAdapterFromLogger(base).WithField(FieldInstitution, "MAX")
	l.Info("parsed file", F(FieldCount, 12))

	out := buf.String()
	assert.Contains(t, out, `"institution":"MAX"`)
	assert.Contains(t, out, `"count":12`)
	assert.Contains(t, out, `"msg":"parsed file"`)
}

func TestLogrusAdapter_WithErrorAndSetOutput(t *testing.T) {
	l := NewLogrusAdapter("debug", "json")
	var buf bytes.Buffer
	l.(*LogrusAdapter).SetOutput(&buf)

	l.WithError(errors.New("boom")).Warn("classifier failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	assert.NotNil(t, NewLogrusAdapterFromLogger(nil))
}

func TestOrDefault(t *testing.T) {
	mock := NewMockLogger()
	assert.Same(t, mock, OrDefault(mock))
	assert.NotNil(t, OrDefault(nil))
}

func TestMockLogger_ChildrenShareEntries(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldFile, "a.csv").WithError(errors.New("bad row"))
	child.Debug("row skipped", F(FieldRow, 3))
	mock.Warn("half the rows were skipped")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0].Level)
	v, ok := entries[0].FieldValue(FieldFile)
	assert.True(t, ok)
	assert.Equal(t, "a.csv", v)
	row, _ := entries[0].FieldValue(FieldRow)
	assert.Equal(t, 3, row)
	assert.EqualError(t, entries[0].Error, "bad row")

	assert.True(t, mock.HasEntry("WARN", "half the rows were skipped"))
	assert.Len(t, mock.EntriesByLevel("WARN"), 1)
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mock.WithField(FieldRow, i).Info("tick")
		}(i)
	}
	wg.Wait()
	assert.Len(t, mock.Entries(), 20)
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Fatalf("stop %d", 1)
	assert.True(t, mock.HasEntry("FATAL", "stop 1"))
}
