package logging

import (
	"go.uber.org/zap"
)

// New builds the process-wide logger. Anything other than env=production
// gets the development config so local output stays human readable.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
