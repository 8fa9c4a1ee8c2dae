package gnubg

import "github.com/labstack/gommon/log"

var logger = log.New("gnubg")

func init() {
	logger.SetLevel(log.WARN)
}

// Logger exposes the engine logger so callers can set level and output.
func Logger() *log.Logger {
	return logger
}

func logWarning(msg string) {
	logger.Warn(msg)
}

func logWarningf(format string, a ...interface{}) {
	logger.Warnf(format, a...)
}

func logDebugf(format string, a ...interface{}) {
	logger.Debugf(format, a...)
}
