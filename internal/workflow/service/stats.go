package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/internal/workflow/repository"
	"github.com/peopleops/docflow/pkg/logger"
	"github.com/peopleops/docflow/pkg/metrics"
)

// Stats is the read-side projection over the live record set, recomputed on
// demand from a full scan. No incremental counters: drift is impossible.
type Stats struct {
	Total         int       `json:"total"`
	Pending       int       `json:"pending"`
	Approved      int       `json:"approved"`
	Rejected      int       `json:"rejected"`
	UrgentPending int       `json:"urgentPending"`
	AwaitingAck   int       `json:"awaitingAcknowledgment"`
	Acknowledged  int       `json:"acknowledged"`
	Overdue       int       `json:"overdue"`
	ComputedAt    time.Time `json:"computedAt"`
}

// Stats returns the current snapshot, served from the cache when one is
// configured. Every transition invalidates the cache, so a hit is never
// staler than the most recent mutation.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		metrics.StatsCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.StatsCache.WithLabelValues("miss").Inc()

	recs, err := s.records.List(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	st := &Stats{Total: len(recs), ComputedAt: now}
	for _, r := range recs {
		switch r.Status.Normalize() {
		case workflow.StatusSubmitted, workflow.StatusUnderReview:
			st.Pending++
			if r.Priority == workflow.PriorityUrgent {
				st.UrgentPending++
			}
		case workflow.StatusApproved:
			st.Approved++
		case workflow.StatusRejected:
			st.Rejected++
		case workflow.StatusPendingAck:
			st.AwaitingAck++
		case workflow.StatusAcknowledged:
			st.Acknowledged++
		}
		if r.Overdue(now) {
			st.Overdue++
		}
	}
	s.cache.Set(ctx, st)
	return st, nil
}

// StatsCache is an optional Redis-backed snapshot cache. All methods are
// nil-receiver safe so the service can run without Redis.
type StatsCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, key string, ttl time.Duration) *StatsCache {
	if key == "" {
		key = "docflow:stats"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{client: client, key: key, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context) (*Stats, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("stats cache read failed: %v", err)
		}
		return nil, false
	}
	var st Stats
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, false
	}
	return &st, true
}

func (c *StatsCache) Set(ctx context.Context, st *Stats) {
	if c == nil || c.client == nil {
		return
	}
	b, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key, b, c.ttl).Err(); err != nil {
		logger.Warnf("stats cache write failed: %v", err)
	}
}

// Invalidate drops the cached snapshot. Called by every transition.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		logger.Warnf("stats cache invalidation failed: %v", err)
	}
}
