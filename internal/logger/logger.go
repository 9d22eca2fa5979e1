package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger for env, tagged with the process name (server, worker, ...).
func New(env, process string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if env == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("process", process))
}
