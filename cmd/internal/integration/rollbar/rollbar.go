package rollbar

import (
	"context"

	"github.com/rollbar/rollbar-go"
)

// Reporter forwards errors that were handled locally (logged and swallowed)
// to an external tracker.
type Reporter interface {
	Report(ctx context.Context, err error, extras map[string]any)
	Close()
}

type RollbarReporter struct {
	client *rollbar.Client
}

// NewReporter returns a Rollbar backed reporter, or a no-op one when token
// is empty.
func NewReporter(token, environment, codeVersion, serverHost string) Reporter {
	if token == "" {
		return NoopReporter{}
	}
	client := rollbar.New(token, environment, codeVersion, serverHost, "")
	return &RollbarReporter{client: client}
}

func (r *RollbarReporter) Report(_ context.Context, err error, extras map[string]any) {
	if err == nil {
		return
	}
	r.client.ErrorWithExtras(rollbar.ERR, err, extras)
}

// Close blocks until queued items are sent.
func (r *RollbarReporter) Close() {
	r.client.Wait()
}

type NoopReporter struct{}

func (NoopReporter) Report(context.Context, error, map[string]any) {}
func (NoopReporter) Close()                                        {}
