package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "@every 10m", cfg.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestSweepConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"bad schedule", func(c *SweepConfig) { c.Schedule = "sometimes" }},
		{"bad timezone", func(c *SweepConfig) { c.Timezone = "Nowhere/Land" }},
		{"timeout too short", func(c *SweepConfig) { c.JobTimeout = time.Millisecond }},
		{"timeout too long", func(c *SweepConfig) { c.JobTimeout = time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv_FallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("SWEEP_SCHEDULE", "not cron")
	t.Setenv("SWEEP_TIMEZONE", "Europe/Madrid")
	t.Setenv("SWEEP_JOB_TIMEOUT", "10m")

	metrics := NewSweepMetrics(prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(testLogger(), metrics)

	assert.Equal(t, "@every 10m", cfg.Schedule)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, 30*time.Second, cfg.JobTimeout)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("job_timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestNewScheduler_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule = ""
	_, err := NewScheduler(cfg, NewSweepMetrics(prometheus.NewRegistry()), testLogger())
	assert.Error(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	metrics := NewSweepMetrics(prometheus.NewRegistry())
	s, err := NewScheduler(DefaultConfig(), metrics, testLogger())
	require.NoError(t, err)

	var order []string
	s.Register(Job{Name: "cache", Run: func(ctx context.Context) (int, error) {
		order = append(order, "cache")
		return 3, nil
	}})
	s.Register(Job{Name: "ratelimit", Run: func(ctx context.Context) (int, error) {
		order = append(order, "ratelimit")
		return 0, errors.New("store unavailable")
	}})
	s.Register(Job{Name: "panics", Run: func(ctx context.Context) (int, error) {
		order = append(order, "panics")
		panic("boom")
	}})

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"cache", "ratelimit", "panics"}, order)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("cache", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ItemsRemovedTotal.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("ratelimit", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("panics", "failure")))
}

func TestScheduler_JobsSeeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JobTimeout = time.Second
	s, err := NewScheduler(cfg, NewSweepMetrics(prometheus.NewRegistry()), testLogger())
	require.NoError(t, err)

	var hasDeadline atomic.Bool
	s.Register(Job{Name: "check", Run: func(ctx context.Context) (int, error) {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return 0, nil
	}})

	s.RunOnce(context.Background())
	assert.True(t, hasDeadline.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule = "@every 1s"
	s, err := NewScheduler(cfg, NewSweepMetrics(prometheus.NewRegistry()), testLogger())
	require.NoError(t, err)

	var runs atomic.Int32
	s.Register(Job{Name: "count", Run: func(ctx context.Context) (int, error) {
		runs.Add(1)
		return 0, nil
	}})

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
