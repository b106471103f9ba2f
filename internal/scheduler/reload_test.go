package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datakamer/datakamer-backend/internal/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReloader struct {
	calls atomic.Int32
	err   error
	path  atomic.Value
}

func (s *stubReloader) LoadFile(_ context.Context, path string) (loader.Summary, error) {
	s.calls.Add(1)
	s.path.Store(path)
	if s.err != nil {
		return loader.Summary{}, s.err
	}
	return loader.Summary{Regions: 10, Universities: 4}, nil
}

func TestRun_CountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	stub := &stubReloader{}
	s, err := New("0 0 3 * * *", "cameroon.json", stub, reg)
	require.NoError(t, err)

	s.Run(context.Background())
	assert.Equal(t, "cameroon.json", stub.path.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.reloads.WithLabelValues("success")))

	stub.err = errors.New("fixture not found")
	s.Run(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.reloads.WithLabelValues("failure")))
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New("every tuesday", "x.json", &stubReloader{}, nil)
	assert.Error(t, err)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New("@hourly", "x.json", &stubReloader{}, reg)
	require.NoError(t, err)
	_, err = New("@hourly", "x.json", &stubReloader{}, reg)
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	stub := &stubReloader{}
	s, err := New("* * * * * *", "x.json", stub, nil)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return stub.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
