package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "retention-sweep"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(t, mfs, "cron_job_success_total", job); got != 2 {
		t.Fatalf("expected success=2, got %f", got)
	}
	if got := counterValue(t, mfs, "cron_job_failure_total", job); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got := histogramSum(t, mfs, "cron_job_duration_seconds", job); got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsNoopWithoutRegisterer(t *testing.T) {
	metrics := NewCronJobMetrics(nil)
	// must not panic
	metrics.ObserveDuration("x", time.Second)
	metrics.IncSuccess("x")
	metrics.IncFailure("x")
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	metric := findJobMetric(mfs, name, job)
	if metric == nil {
		t.Fatalf("metric %q with job=%s not found", name, job)
	}
	return metric.GetCounter().GetValue()
}

func histogramSum(t *testing.T, mfs []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	metric := findJobMetric(mfs, name, job)
	if metric == nil {
		t.Fatalf("histogram %q with job=%s not found", name, job)
	}
	return metric.GetHistogram().GetSampleSum()
}

func findJobMetric(mfs []*dto.MetricFamily, name, job string) *dto.Metric {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric
				}
			}
		}
	}
	return nil
}
