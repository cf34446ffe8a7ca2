package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobLifecycleCounters(t *testing.T) {
	before := testutil.ToFloat64(conversionsTotal.WithLabelValues("mkv", "completed"))
	active := testutil.ToFloat64(jobsActive)

	JobStarted()
	assert.Equal(t, active+1, testutil.ToFloat64(jobsActive))

	JobFinished("mkv", "completed", 2*time.Second)
	assert.Equal(t, active, testutil.ToFloat64(jobsActive))
	assert.Equal(t, before+1, testutil.ToFloat64(conversionsTotal.WithLabelValues("mkv", "completed")))
}

func TestBatchAndProbeCounters(t *testing.T) {
	b := testutil.ToFloat64(batchesTotal.WithLabelValues("partial"))
	BatchFinished("partial")
	assert.Equal(t, b+1, testutil.ToFloat64(batchesTotal.WithLabelValues("partial")))

	p := testutil.ToFloat64(probesTotal.WithLabelValues("failure"))
	Probe(false)
	assert.Equal(t, p+1, testutil.ToFloat64(probesTotal.WithLabelValues("failure")))
}
