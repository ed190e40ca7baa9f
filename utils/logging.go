package utils

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SetupLogger configures the process-wide logrus logger.
func SetupLogger(production bool) {
	logrus.SetOutput(os.Stdout)
	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

// LogError records a failure of component at error level and reports it to
// Sentry, tagged with errorType. fields become log fields and Sentry extras.
func LogError(component, errorType string, err error, fields map[string]interface{}) {
	entry := logrus.WithFields(logrus.Fields{
		"component":  component,
		"error_type": errorType,
	}).WithError(err)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error("Request failed")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetTag("error_type", errorType)
		for k, v := range fields {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent records a notable event at info level and leaves a Sentry
// breadcrumb for it.
func LogEvent(component, eventType string, data map[string]interface{}) {
	entry := logrus.WithFields(logrus.Fields{
		"component":  component,
		"event_type": eventType,
	})
	if len(data) > 0 {
		entry = entry.WithFields(data)
	}
	entry.Info(eventType)

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  component + "." + eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
