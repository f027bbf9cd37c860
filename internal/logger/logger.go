package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger in debug mode and a JSON production logger otherwise.
func New(debugMode bool) (l *zap.Logger, err error) {
	if debugMode {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return l, nil
}
