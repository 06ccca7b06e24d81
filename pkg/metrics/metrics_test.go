package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/chazu/aerogeom/pkg/status"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{status.InvalidHandle, "invalid_handle"},
		{status.New(status.UnknownComponentSegment, "op", "x"), "unknown_component_segment"},
		{errors.New("plain"), "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusLabel(tt.err))
	}
}

func TestRecordOpenClose(t *testing.T) {
	before := testutil.ToFloat64(ConfigurationsOpen)
	okBefore := testutil.ToFloat64(ConfigurationsOpenedTotal.WithLabelValues("ok"))
	failBefore := testutil.ToFloat64(ConfigurationsOpenedTotal.WithLabelValues("already_open"))

	RecordOpen(nil)
	RecordOpen(status.AlreadyOpen)
	assert.Equal(t, before+1, testutil.ToFloat64(ConfigurationsOpen))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(ConfigurationsOpenedTotal.WithLabelValues("ok")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(ConfigurationsOpenedTotal.WithLabelValues("already_open")))

	RecordClose()
	assert.Equal(t, before, testutil.ToFloat64(ConfigurationsOpen))
}

func TestRecordOperation(t *testing.T) {
	c := OperationsTotal.WithLabelValues("EvaluatePoint", "parameter_out_of_range")
	before := testutil.ToFloat64(c)
	RecordOperation("EvaluatePoint", status.New(status.ParameterOutOfRange, "x", "eta"))
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordExport(t *testing.T) {
	c := ExportsTotal.WithLabelValues("iges", "ok")
	before := testutil.ToFloat64(c)
	RecordExport("iges", nil, 25*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
	assert.Positive(t, testutil.CollectAndCount(ExportDuration))
}

func TestRecordEvaluation(t *testing.T) {
	c := EvaluationsTotal.WithLabelValues("internal_error")
	before := testutil.ToFloat64(c)
	RecordEvaluation(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), time.Millisecond)
}
