package status

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRun(true, 7, 0, 95)
	m.RecordRun(false, 2, 3, 12)
	m.RecordPush(true)
	m.RecordPush(true)
	m.RecordPush(false)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("ok")); got != 1 {
		t.Errorf("runs{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("error")); got != 1 {
		t.Errorf("runs{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.messages); got != 9 {
		t.Errorf("messages = %v, want 9", got)
	}
	if got := testutil.ToFloat64(m.sendFailures); got != 3 {
		t.Errorf("sendFailures = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.pushes.WithLabelValues("ok")); got != 2 {
		t.Errorf("pushes{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pushes.WithLabelValues("error")); got != 1 {
		t.Errorf("pushes{error} = %v, want 1", got)
	}
}
