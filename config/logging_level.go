package config

import (
	"sync"

	"go.viam.com/framekit/logging"
)

var globalLogger struct {
	// Set once at startup.
	logger           logging.Logger
	cmdLineDebugFlag bool

	mu        sync.Mutex
	fileLevel logging.Level
}

// InitLoggingSettings initializes the global logging settings. A debug flag from the command line
// wins over anything a config file asks for.
func InitLoggingSettings(logger logging.Logger, cmdLineDebugFlag bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	globalLogger.logger = logger
	globalLogger.cmdLineDebugFlag = cmdLineDebugFlag
	globalLogger.fileLevel = logging.INFO
	refreshLogLevelInLock()
	logger.Debugw("log level initialized", "level", logger.GetLevel())
}

// UpdateFileConfigLevel applies the level of a freshly read config file.
func UpdateFileConfigLevel(level logging.Level) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	globalLogger.fileLevel = level
	refreshLogLevelInLock()
}

func refreshLogLevelInLock() {
	if globalLogger.logger == nil {
		return
	}
	newLevel := globalLogger.fileLevel
	if globalLogger.cmdLineDebugFlag {
		newLevel = logging.DEBUG
	}
	logging.GlobalLogLevel.SetLevel(newLevel.AsZap())
	if globalLogger.logger.GetLevel() == newLevel {
		return
	}
	globalLogger.logger.SetLevel(newLevel)
	globalLogger.logger.Infow("new log level", "level", newLevel)
}
