// Package reportcache fetches policy report collections through a Store,
// deduplicating concurrent requests and keeping completed fetches for a
// short window.
package reportcache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/apimachinery/pkg/util/cache"
	"k8s.io/utils/clock"

	"kwreport/pkg/policyreport"
)

// CacheTTL is how long a completed fetch is served from the cache, measured
// from the moment the fetch started. It only absorbs bursts of callers.
const CacheTTL = 10 * time.Second

const (
	anyKind      = "*"
	maxCacheKeys = 128
)

// Store is the part of the report store the engine drives.
type Store interface {
	FetchClusterReports(ctx context.Context, kind string) ([]policyreport.Report, error)
	FetchNamespacedReports(ctx context.Context, kind string) ([]policyreport.Report, error)
	UpdateClusterReports(reports []policyreport.Report)
	UpdateNamespacedReports(reports []policyreport.Report)
	RegenerateSummaryMap()
	ReportSchemaRegistered(resourceType string) bool
	ReportByResourceID(resourceType, resourceID string) (policyreport.Report, bool)
}

type cacheKey struct {
	clusterLevel bool
	kind         string
}

func (k cacheKey) String() string {
	return strconv.FormatBool(k.clusterLevel) + "/" + k.kind
}

// call is one fetch shared by every caller that asked for the same key while
// it was running.
type call struct {
	done      chan struct{}
	reports   []policyreport.Report
	err       error
	createdAt time.Time
}

// Engine is safe for concurrent use.
type Engine struct {
	store  Store
	clock  clock.PassiveClock
	log    logr.Logger
	tracer trace.Tracer

	mu         sync.Mutex
	inflight   map[cacheKey]*call
	completed  *cache.LRUExpireCache
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.PassiveClock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an Engine over store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		clock:    clock.RealClock{},
		log:      logr.Discard(),
		tracer:   otel.Tracer("kwreport/reportcache"),
		inflight: map[cacheKey]*call{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithName("reportcache")
	e.completed = cache.NewLRUExpireCacheWithClock(maxCacheKeys, e.clock)
	return e
}

// GetReports returns the reports of one family, optionally restricted to a
// scope kind. Callers arriving while a fetch for the same key is running
// share its outcome. A completed fetch is reused for CacheTTL; a failed one
// is not cached. The summary map is regenerated after every successful
// call, cached or not.
//
// The fetch is not tied to ctx: a caller giving up only stops waiting.
// The returned slice is shared between callers and must not be modified.
func (e *Engine) GetReports(ctx context.Context, clusterLevel bool, resourceKind string) ([]policyreport.Report, error) {
	key := cacheKey{clusterLevel: clusterLevel, kind: resourceKind}
	if key.kind == "" {
		key.kind = anyKind
	}

	ctx, span := e.tracer.Start(ctx, "reportcache.GetReports", trace.WithAttributes(
		attribute.Bool("report.cluster_level", clusterLevel),
		attribute.String("report.kind", key.kind),
	))
	defer span.End()

	e.mu.Lock()
	if c, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		e.log.V(1).Info("joining pending fetch", "key", key)
		span.SetAttributes(attribute.String("cache", "pending"))
		reports, err := e.wait(ctx, c)
		return e.finish(span, reports, err)
	}
	if v, ok := e.completed.Get(key); ok {
		e.mu.Unlock()
		e.log.V(1).Info("cache hit", "key", key)
		span.SetAttributes(attribute.String("cache", "hit"))
		return e.finish(span, v.([]policyreport.Report), nil)
	}

	c := &call{done: make(chan struct{}), createdAt: e.clock.Now()}
	e.inflight[key] = c
	gen := e.generation
	e.mu.Unlock()

	span.SetAttributes(attribute.String("cache", "miss"))
	e.log.V(1).Info("cache miss, fetching", "key", key)
	go e.fetch(context.WithoutCancel(ctx), key, gen, c)

	reports, err := e.wait(ctx, c)
	return e.finish(span, reports, err)
}

// ClearReportCache discards every cache entry. Fetches still running keep
// serving the callers already waiting on them but are not cached.
func (e *Engine) ClearReportCache() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.inflight = map[cacheKey]*call{}
	e.completed = cache.NewLRUExpireCacheWithClock(maxCacheKeys, e.clock)
	e.log.V(1).Info("report cache cleared")
}

func (e *Engine) fetch(ctx context.Context, key cacheKey, gen uint64, c *call) {
	if key.clusterLevel {
		c.reports, c.err = e.store.FetchClusterReports(ctx, kindFilter(key.kind))
	} else {
		c.reports, c.err = e.store.FetchNamespacedReports(ctx, kindFilter(key.kind))
	}

	if c.err == nil {
		if key.clusterLevel {
			e.store.UpdateClusterReports(c.reports)
		} else {
			e.store.UpdateNamespacedReports(c.reports)
		}
	} else {
		e.log.Error(c.err, "failed to fetch reports", "key", key)
	}

	e.mu.Lock()
	if e.inflight[key] == c {
		delete(e.inflight, key)
	}
	if c.err == nil && gen == e.generation {
		if ttl := CacheTTL - e.clock.Since(c.createdAt); ttl > 0 {
			e.completed.Add(key, c.reports, ttl)
		}
	}
	e.mu.Unlock()

	close(c.done)
}

func (e *Engine) wait(ctx context.Context, c *call) ([]policyreport.Report, error) {
	select {
	case <-c.done:
		return c.reports, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) finish(span trace.Span, reports []policyreport.Report, err error) ([]policyreport.Report, error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	e.store.RegenerateSummaryMap()
	return reports, nil
}

func kindFilter(kind string) string {
	if kind == anyKind {
		return ""
	}
	return kind
}
