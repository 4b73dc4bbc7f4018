package logger

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logrus *logrus.Logger

func Init(logfile string) {
	logger := logrus.New()

	logger.SetReportCaller(true)

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	logger.Out = &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    200,
		MaxBackups: 30,
		MaxAge:     30,
		Compress:   true,
	}

	logger.SetLevel(logrus.InfoLevel)
	Logrus = logger
}

func SetLogLevel(runMode string) {
	modeLevel := logrus.InfoLevel

	switch runMode {
	case "debug":
		modeLevel = logrus.DebugLevel
	case "warn":
		modeLevel = logrus.WarnLevel
	case "error":
		modeLevel = logrus.ErrorLevel
	case "fatal":
		modeLevel = logrus.FatalLevel
	default:
		modeLevel = logrus.InfoLevel
	}

	Logrus.SetLevel(modeLevel)
}
