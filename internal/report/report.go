// Package report forwards reportable run failures to Honeybadger.
package report

import (
	"os"

	honeybadger "github.com/honeybadger-io/honeybadger-go"
	"github.com/sirupsen/logrus"
)

// Reporter receives failures that someone should look at.
type Reporter interface {
	Report(err error, context map[string]any, tags ...string)
	Flush()
}

// New returns a Honeybadger-backed Reporter when HONEYBADGER_API_KEY is set,
// and a Reporter that only logs otherwise.
func New(logger *logrus.Logger) Reporter {
	apiKey := os.Getenv("HONEYBADGER_API_KEY")
	if apiKey == "" {
		logger.Info("Honeybadger is not active. To enable error reporting, set the HONEYBADGER_API_KEY environment variable.")
		return nop{}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    os.Getenv("GO_ENV"),
	})
	logger.Info("Honeybadger error reporting is enabled.")
	return hb{logger: logger}
}

type hb struct {
	logger *logrus.Logger
}

func (h hb) Report(err error, context map[string]any, tags ...string) {
	if err == nil {
		return
	}
	if _, notifyErr := honeybadger.Notify(err, honeybadger.Context(context), honeybadger.Tags(tags)); notifyErr != nil {
		h.logger.Warnf("honeybadger notify failed: %v", notifyErr)
	}
}

// Flush blocks until queued notices are sent. Call it before the process exits.
func (hb) Flush() {
	honeybadger.Flush()
}

type nop struct{}

func (nop) Report(error, map[string]any, ...string) {}
func (nop) Flush()                                  {}
