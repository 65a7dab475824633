package invoices

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	agingCacheKey = "aquanav:receivables:aging"
	agingCacheTTL = 10 * time.Minute
)

// ReceivablesService layers the open-balance views over the invoice store,
// with the aging report cached in Redis because it walks every open invoice.
type ReceivablesService struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

func NewReceivablesService(repo Repository, cache *redis.Client, logger *slog.Logger) *ReceivablesService {
	return &ReceivablesService{repo: repo, cache: cache, logger: logger}
}

// Receivables lists open balances, overdue first then by due date.
func (s *ReceivablesService) Receivables(ctx context.Context) ([]Receivable, error) {
	recs, err := s.repo.OpenReceivables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load receivables: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].IsOverdue != recs[j].IsOverdue {
			return recs[i].IsOverdue
		}
		return recs[i].DueDate.Before(recs[j].DueDate)
	})
	return recs, nil
}

// Aging buckets outstanding balances by days past due. The cached copy is
// invalidated by payment recording via InvalidateAging and expires on its own
// otherwise.
func (s *ReceivablesService) Aging(ctx context.Context) (*AgingReport, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, agingCacheKey).Bytes()
		if err == nil {
			var cached AgingReport
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("aging cache read failed", slog.Any("error", err))
		}
	}

	// Collapse concurrent misses into one scan; the report walks every
	// open invoice.
	result, err, _ := s.group.Do(agingCacheKey, func() (any, error) {
		recs, err := s.repo.OpenReceivables(ctx)
		if err != nil {
			return nil, fmt.Errorf("load receivables for aging: %w", err)
		}
		report := buildAging(recs, time.Now())
		if s.cache != nil {
			if raw, err := json.Marshal(report); err == nil {
				if err := s.cache.Set(ctx, agingCacheKey, raw, agingCacheTTL).Err(); err != nil {
					s.logger.Warn("aging cache write failed", slog.Any("error", err))
				}
			}
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*AgingReport), nil
}

// InvalidateAging drops the cached report. Called after payment recording.
func (s *ReceivablesService) InvalidateAging(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, agingCacheKey).Err(); err != nil {
		s.logger.Warn("aging cache invalidate failed", slog.Any("error", err))
	}
}

var agingBounds = []struct {
	label string
	from  int
	to    int
}{
	{"current", -1 << 30, 0},
	{"1-30", 1, 30},
	{"31-60", 31, 60},
	{"61-90", 61, 90},
	{"90+", 91, 1 << 30},
}

func buildAging(recs []Receivable, now time.Time) *AgingReport {
	report := &AgingReport{GeneratedAt: now}
	buckets := make([]AgingBucket, len(agingBounds))
	for i, b := range agingBounds {
		buckets[i] = AgingBucket{Label: b.label}
	}

	for _, rec := range recs {
		if report.Currency == "" {
			report.Currency = rec.Currency
		}
		overdueDays := int(now.Sub(rec.DueDate).Hours() / 24)
		for i, b := range agingBounds {
			if overdueDays >= b.from && overdueDays <= b.to {
				buckets[i].Outstanding += rec.OutstandingAmount
				buckets[i].Count++
				break
			}
		}
		report.Total += rec.OutstandingAmount
	}

	report.Buckets = buckets
	return report
}
