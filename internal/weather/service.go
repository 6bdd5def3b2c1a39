package weather

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/logger"
)

const (
	maxForecastDays = 7
	dateLayout      = "2006-01-02"
)

// Service serves daily forecasts, preferring the cache and fanning out to the
// external API for missing days.
type Service struct {
	client *Client
	cache  *Cache
	log    *logger.Logger
}

// NewService creates the weather service. client may be nil when the weather
// API is not configured.
func NewService(client *Client, cache *Cache, log *logger.Logger) *Service {
	return &Service{client: client, cache: cache, log: log}
}

// Forecast returns up to maxForecastDays of daily forecasts starting today.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, days int) ([]DayForecast, error) {
	if s.client == nil {
		return nil, apperr.Precondition("weather service is not configured")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperr.Validation("invalid coordinates")
	}
	if days < 1 {
		days = 1
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	today := time.Now()
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(dateLayout))
	}

	results := make(map[string]DayForecast, days)
	var missing []string
	for _, date := range dates {
		if cached, ok := s.cache.Get(ctx, CacheKey(lat, lon, date)); ok {
			results[date] = *cached
		} else {
			missing = append(missing, date)
		}
	}

	if len(missing) > 0 {
		fetched, err := s.fetchMissing(ctx, lat, lon, missing)
		if err != nil {
			return nil, err
		}
		for date, f := range fetched {
			results[date] = f
		}
	}

	out := make([]DayForecast, 0, len(results))
	for _, f := range results {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// fetchMissing fans out one API call per uncached day and caches each result.
func (s *Service) fetchMissing(ctx context.Context, lat, lon float64, dates []string) (map[string]DayForecast, error) {
	var mu sync.Mutex
	fetched := make(map[string]DayForecast, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, date := range dates {
		date := date
		g.Go(func() error {
			forecasts, err := s.client.FetchDaily(gctx, lat, lon, date, date)
			if err != nil {
				return err
			}
			for _, f := range forecasts {
				s.cache.Set(gctx, CacheKey(lat, lon, f.Date), f)
				mu.Lock()
				fetched[f.Date] = f
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("weather fetch failed", "error", err, "lat", lat, "lon", lon)
		return nil, apperr.Internal("failed to fetch weather forecast")
	}
	return fetched, nil
}
