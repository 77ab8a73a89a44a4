package rollbar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReporter_WithoutToken(t *testing.T) {
	t.Parallel()

	r := NewReporter("", "test", "", "host")

	assert.IsType(t, NoopReporter{}, r)
	assert.NotPanics(t, func() {
		r.Report(context.Background(), errors.New("boom"), map[string]any{"appointment_id": "a1"})
		r.Close()
	})
}

func TestNewReporter_WithToken(t *testing.T) {
	t.Parallel()

	r := NewReporter("token", "test", "", "host")

	_, ok := r.(*RollbarReporter)
	assert.True(t, ok)
	assert.NotPanics(t, func() { r.Report(context.Background(), nil, nil) })
}
