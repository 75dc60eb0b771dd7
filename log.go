package amqp

import "github.com/sirupsen/logrus"

// log is the single shared logger every other file in this package uses,
// mirroring asynqp's own `from .log import log` module (a single logger
// instance imported everywhere rather than one per type). Callers may
// replace it wholesale (e.g. to redirect into their own logrus instance)
// via SetLogger.
var log = logrus.WithField("component", "amqp")

// SetLogger lets an embedding application route this package's log output
// through its own *logrus.Logger, preserving the "component" field.
func SetLogger(l *logrus.Logger) {
	log = l.WithField("component", "amqp")
}
