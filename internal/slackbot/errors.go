package slackbot

import "log"

// ErrorReporter receives Slack delivery failures.
type ErrorReporter interface {
	Report(err error, fields map[string]string)
}

type logReporter struct {
	logger *log.Logger
}

func (r *logReporter) Report(err error, fields map[string]string) {
	r.logger.Printf("event=slack_error err=%v fields=%v", err, fields)
}
