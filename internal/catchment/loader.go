package catchment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle of the in-memory dataset.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// ErrNotLoaded is returned by CheckReadiness until the dataset is in memory.
var ErrNotLoaded = errors.New("catchment dataset not loaded")

// Loader fetches the dataset at most once per process. Concurrent callers
// share a single in-flight load. A failed load returns to StateUnloaded so a
// later call retries; once loaded the dataset never changes until Reset.
type Loader struct {
	source  Source
	metrics *observability.Metrics
	logger  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	state   State
	dataset *Dataset
	gen     uint64
}

// NewLoader creates a Loader for source.
func NewLoader(source Source, metrics *observability.Metrics, logger *slog.Logger) *Loader {
	return &Loader{
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
}

// Load returns the dataset, fetching it on first use. ctx bounds only the
// caller's wait: the shared fetch continues for the other waiters.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.mu.RLock()
	if l.state == StateLoaded {
		ds := l.dataset
		l.mu.RUnlock()
		return ds, nil
	}
	gen := l.gen
	l.mu.RUnlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return l.load(fetchCtx, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) load(ctx context.Context, gen uint64) (*Dataset, error) {
	l.mu.Lock()
	if l.gen == gen {
		if l.state == StateLoaded {
			ds := l.dataset
			l.mu.Unlock()
			return ds, nil
		}
		l.state = StateLoading
	}
	l.mu.Unlock()

	l.logger.Info("loading catchment dataset", "source", l.source.String())

	start := domain.Now()
	ds, err := l.fetch(ctx)
	l.metrics.UpstreamDuration.WithLabelValues("dataset").Observe(domain.Since(start).Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.metrics.DatasetLoads.WithLabelValues("error").Inc()
		if l.gen == gen {
			l.state = StateUnloaded
		}
		return nil, err
	}

	l.metrics.DatasetLoads.WithLabelValues("success").Inc()
	// A Reset during the fetch invalidates this result for the cache, but the
	// waiters of this generation still get it.
	if l.gen == gen {
		l.state = StateLoaded
		l.dataset = ds
		l.metrics.DatasetLoaded.Set(1)
		l.metrics.DatasetFeatures.Set(float64(len(ds.Features)))
	}

	l.logger.Info("catchment dataset loaded",
		"source", l.source.String(),
		"features", len(ds.Features),
		"skipped", ds.Skipped,
		"duration", domain.Since(start),
	)
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context) (*Dataset, error) {
	data, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ParseDataset(data)
}

// State reports the current lifecycle state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Reset drops the cached dataset so the next Load fetches again. Intended
// for tests and operator-triggered reloads.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = StateUnloaded
	l.dataset = nil
	l.metrics.DatasetLoaded.Set(0)
	l.metrics.DatasetFeatures.Set(0)
}

// CheckReadiness returns ErrNotLoaded until the dataset is in memory.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if l.State() != StateLoaded {
		return ErrNotLoaded
	}
	return nil
}
