package logging

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// LoggerManager хранит файловые логгеры компонентов (хранилище мира и т.п.)
// и общие для них уровни. Уровни из конфигурации задаются один раз через
// SetLevels и действуют на уже открытые и будущие логгеры.
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
	fileLevel    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает общий менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

func newLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		consoleLevel: INFO,
		fileLevel:    TRACE,
	}
}

// SetLevels задаёт уровни консоли и файла для всех компонентов
func (lm *LoggerManager) SetLevels(consoleLevel, fileLevel LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel = consoleLevel
	lm.fileLevel = fileLevel
	for _, l := range lm.loggers {
		l.setLevels(consoleLevel, fileLevel)
	}
}

// GetLogger возвращает логгер компонента, открывая файл при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}

	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	l.setLevels(lm.consoleLevel, lm.fileLevel)
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger как GetLogger, но при ошибке возвращает консольный логгер
// без файла. Такой логгер не регистрируется и закрывать его не нужно.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}

	lm.mu.Lock()
	level := lm.consoleLevel
	lm.mu.Unlock()

	fallback := NewWriterLogger(component, os.Stdout, level)
	fallback.Warn("Файл логов недоступен, пишем только в консоль: %v", err)
	return fallback
}

// CloseAll закрывает файлы всех компонентов. Следующий GetLogger откроет новый файл.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// GetComponentLogger возвращает логгер компонента из общего менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

// GetStorageLogger возвращает логгер хранилища мира
func GetStorageLogger() *Logger {
	return GetComponentLogger("storage")
}
