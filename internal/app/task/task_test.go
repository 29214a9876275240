package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeCleaner struct {
	olderThan time.Duration
	removed   int
	err       error
}

func (f *fakeCleaner) CleanupAbandonedUploads(ctx context.Context, olderThan time.Duration) (int, error) {
	f.olderThan = olderThan
	return f.removed, f.err
}

func TestCleanupAbandonedUploadsJob(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cleaner := &fakeCleaner{removed: 3}
	job := NewCleanupAbandonedUploadsJob(cleaner, 6*time.Hour, zap.New(core))

	job.Run()
	assert.Equal(t, 6*time.Hour, cleaner.olderThan)
	entries := logs.FilterField(zap.Int("removed", 3)).All()
	assert.Len(t, entries, 1)

	cleaner.err = errors.New("permission denied")
	job.Run()
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

type panickyJob struct{ runs atomic.Int32 }

func (j *panickyJob) Run() {
	j.runs.Add(1)
	panic("boom")
}

func (j *panickyJob) Name() string { return "PanickyJob" }

func TestWrappers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	job := &panickyJob{}

	wrapped := NewPanicRecoveryWrapper(logger)(NewLoggingWrapper(logger)(job))
	assert.NotPanics(t, wrapped.Run)
	assert.Equal(t, int32(1), job.runs.Load())

	panicked := logs.FilterMessage("Job panicked").All()
	require.Len(t, panicked, 1)
	assert.Equal(t, "PanickyJob", panicked[0].ContextMap()["job_name"])
	assert.Equal(t, 1, logs.FilterMessage("Job execution started").Len())
}

func TestScheduler_RegisterJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Add("0 0 3 * * *", NewCleanupAbandonedUploadsJob(&fakeCleaner{}, time.Hour, zap.NewNop()))
	require.NoError(t, s.RegisterJobs())

	bad := NewScheduler(zap.NewNop())
	bad.Add("not a schedule", NewCleanupAbandonedUploadsJob(&fakeCleaner{}, time.Hour, zap.NewNop()))
	assert.Error(t, bad.RegisterJobs())
}
