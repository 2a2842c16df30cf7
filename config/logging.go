package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "complaint-api.log")
}

// InitLogging routes the standard logger to stdout and a rotating log file.
func InitLogging() (io.Closer, io.Writer) {
	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil, LogWriter
	}

	rotator := &lumberjack.Logger{
		Filename:   LogFilePath(),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	LogWriter = io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(LogWriter)
	return rotator, LogWriter
}
