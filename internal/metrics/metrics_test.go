package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.Transition("pending", "escrow")
	r.Transition("pending", "escrow")
	r.Notification(false)
	r.Notification(true)
	r.PublishError()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("pending", "escrow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.publishErrors))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Transition("a", "b")
		r.Offer("won")
		r.Notification(false)
		r.PublishError()
	})
}
