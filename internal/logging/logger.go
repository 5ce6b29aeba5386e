// Package logging builds the shared *logrus.Logger from config, the
// instance threaded into every component per SPEC_FULL.md's ambient
// stack section.
package logging

import (
	"github.com/iota-uz/persistsvc/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger configured from cfg's LogLevel/LogFormat.
// An unparseable level falls back to info rather than failing startup.
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
