package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/pipeline"
)

func TestSweep_RetentionBoundary(t *testing.T) {
	store := newMemStore(clock)
	store.seed("exactly seven days", "A", "workshop", t0.Add(-7*24*time.Hour))
	store.seed("fresh", "B", "workshop", t0.Add(-time.Hour))

	now := t0
	s := pipeline.NewSweeper(store, pipeline.DefaultRetention, metrics.New(nil), zap.NewNop()).
		WithClock(func() time.Time { return now })

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a row exactly at the boundary survives")
	assert.Equal(t, 2, store.count())

	now = t0.Add(time.Nanosecond)
	n, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, store.count())
}

func TestSweep_IgnoresDeadlineAndType(t *testing.T) {
	store := newMemStore(clock)
	for _, typ := range []string{"internship", "scholarship", "hackathon"} {
		store.seed("old "+typ, "Org", typ, t0.Add(-8*24*time.Hour))
	}

	s := pipeline.NewSweeper(store, 0, metrics.New(nil), zap.NewNop()).WithClock(clock)
	n, err := s.Sweep(context.Background())

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Zero(t, store.count())
}

func TestSweep_EmptyTable(t *testing.T) {
	s := pipeline.NewSweeper(newMemStore(clock), time.Hour, metrics.New(nil), zap.NewNop())
	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_Error(t *testing.T) {
	store := newMemStore(clock)
	store.deleteErr = errors.New("timeout")

	_, err := pipeline.NewSweeper(store, time.Hour, metrics.New(nil), zap.NewNop()).Sweep(context.Background())
	assert.ErrorContains(t, err, "timeout")
}
