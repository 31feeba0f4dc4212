package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":   TRACE,
		"DEBUG":   DEBUG,
		"":        INFO,
		"info":    INFO,
		"warning": WARN,
		" error ": ERROR,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, "Уровень %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestWriterLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("search", &buf, WARN)

	logger.Info("не должно попасть")
	logger.Warn("кластер %d пуст", 7)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [search] кластер 7 пуст")
}

func TestDefaultLogger_NoopUntilInit(t *testing.T) {
	// До инициализации сообщения отбрасываются без паники
	SetDefaultLogger(nil)
	Info("тишина")

	var buf bytes.Buffer
	SetDefaultLogger(NewWriterLogger("", &buf, DEBUG))
	defer SetDefaultLogger(nil)

	Debug("жила из %d блоков", 12)
	Trace("слишком подробно")

	assert.Contains(t, buf.String(), "[DEBUG] жила из 12 блоков")
	assert.NotContains(t, buf.String(), "слишком подробно")
}

func TestNewLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	prev := LogDir
	LogDir = dir
	defer func() { LogDir = prev }()

	logger, err := NewLogger("storage")
	require.NoError(t, err)
	logger.SetConsoleLevel(ERROR)
	logger.Debug("секция %s сохранена", "0:4:0")
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "секция 0:4:0 сохранена")
}

func TestLoggerManager_SharedLevelsAndClose(t *testing.T) {
	dir := t.TempDir()
	prev := LogDir
	LogDir = dir
	defer func() { LogDir = prev }()

	lm := newLoggerManager()
	lm.SetLevels(ERROR, WARN)

	storage, err := lm.GetLogger("storage")
	require.NoError(t, err)
	again, err := lm.GetLogger("storage")
	require.NoError(t, err)
	assert.Same(t, storage, again, "Один файл на компонент")

	storage.Info("секция пропущена")
	storage.Warn("секция %s повреждена", "1:3:-2")

	// Уровни применяются и к уже открытым логгерам
	lm.SetLevels(ERROR, TRACE)
	storage.Debug("сжатие %d байт", 4096)

	require.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.loggers)

	files, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "секция пропущена")
	assert.Contains(t, out, "[WARN] [storage] секция 1:3:-2 повреждена")
	assert.Contains(t, out, "[DEBUG] [storage] сжатие 4096 байт")

	// После закрытия запись в файл прекращается без паники
	storage.Error("после закрытия")
	data, err = os.ReadFile(files[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "после закрытия")
}

func TestLoggerManager_FallbackWithoutLogDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	prev := LogDir
	LogDir = filepath.Join(blocker, "logs")
	defer func() { LogDir = prev }()

	lm := newLoggerManager()
	_, err := lm.GetLogger("storage")
	assert.Error(t, err)

	l := lm.MustGetLogger("storage")
	require.NotNil(t, l)
	assert.Nil(t, l.file)
	assert.Empty(t, lm.loggers, "Консольный логгер не регистрируется")
	assert.NoError(t, lm.CloseAll())
}
