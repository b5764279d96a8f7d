package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"roi-workers/internal/common/metrics"
)

func TestObservability_RecordsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New("roi-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordCalculation(ctx, "Healthcare", "success", 4.56)
	o.RecordJobProcessed(ctx, "calculate-roi", "completed")
	o.RecordJobDuration(ctx, "calculate-roi", 15*time.Millisecond, "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "roi_engine_calculations")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "roi_engine_multiplier")
}

func TestObservability_StartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	o := New("roi-test", promclient.NewRegistry(), recorder)
	defer o.Shutdown()

	_, span := o.StartSpan(context.Background(), "roi.calculate", attribute.String("industry", "Retail"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "roi.calculate", ended[0].Name())
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability

	assert.NotPanics(t, func() {
		ctx, span := o.StartSpan(context.Background(), "noop")
		span.End()
		o.RecordCalculation(ctx, "Retail", "success", 3.4)
		o.RecordJobProcessed(ctx, "calculate-roi", "completed")
		o.Shutdown()
	})
}

func gatherSeries(t *testing.T, reg *promclient.Registry, prefix string) []map[string]string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var series []map[string]string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			series = append(series, labels)
		}
	}
	return series
}

func TestObservability_WorkerJobsReachOtel(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New("roi-test", reg)
	defer o.Shutdown()

	remove := metrics.AddJobObserver(o)
	defer remove()

	metrics.JobStarted("record-calculation")("")
	metrics.JobStarted("record-calculation")("DATABASE_INSERT_FAILED")

	series := gatherSeries(t, reg, "jobs_processed")
	require.Len(t, series, 2)
	statuses := []string{series[0]["status"], series[1]["status"]}
	assert.ElementsMatch(t, []string{metrics.JobStatusCompleted, metrics.JobStatusFailed}, statuses)
	assert.Equal(t, "record-calculation", series[0]["task_type"])
}

func TestObservability_UnknownIndustriesShareOneSeries(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New("roi-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		o.RecordCalculation(ctx, fmt.Sprintf("bogus-%d", i), metrics.OutcomeUnknownIndustry, 0)
	}
	o.RecordCalculation(ctx, "Retail", metrics.OutcomeSuccess, 3.4)

	series := gatherSeries(t, reg, "roi_engine_calculations")
	require.Len(t, series, 2)
	industries := []string{series[0]["industry"], series[1]["industry"]}
	assert.ElementsMatch(t, []string{metrics.UnknownIndustryLabel, "Retail"}, industries)
}
