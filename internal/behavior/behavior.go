package behavior

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/metrics"
)

// Summary aggregates the tracked sessions for the admin dashboard.
type Summary struct {
	Sessions       int64   `json:"sessions"`
	Conversions    int64   `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	CtaSeenRate    float64 `json:"cta_seen_rate"`
	MeanScroll     float64 `json:"mean_scroll"`
	MedianScroll   float64 `json:"median_scroll"`
	MeanTime       float64 `json:"mean_time"`
	MedianTime     float64 `json:"median_time"`
	MeanClicks     float64 `json:"mean_clicks"`
}

// Service ingests browsing samples posted by the storefront client and
// rolls them up into dashboard aggregates. One row is kept per session;
// repeated posts for the same session overwrite the snapshot, so scroll
// depth and time on page only ever grow monotonically from the client's
// point of view.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	s := &Service{db: db}
	if bus != nil {
		_ = bus.Subscribe(order.TopicCreated, s.onOrderCreated)
	}
	return s
}

// Ingest upserts the sample for its session.
func (s *Service) Ingest(sample domain.BehaviorSample) error {
	if sample.SessionId == "" {
		return nil
	}
	var existing domain.BehaviorSample
	err := s.db.Where("session_id = ?", sample.SessionId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(&sample).Error; err != nil {
			return err
		}
		metrics.IncrCounter("shop_behavior_sessions", 1)
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.Model(&domain.BehaviorSample{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"scroll":   sample.Scroll,
			"time":     sample.Time,
			"clicks":   sample.Clicks,
			"cta_seen": sample.CtaSeen || existing.CtaSeen,
		}).Error
}

// MarkConverted flags a tracked session once its checkout commits.
func (s *Service) MarkConverted(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.db.Model(&domain.BehaviorSample{}).
		Where("session_id = ?", sessionID).
		Update("converted", true).Error
}

func (s *Service) onOrderCreated(_ *domain.Order) {
	metrics.IncrCounter("shop_conversions", 1)
}

// Summarize computes the dashboard aggregates over samples newer than
// since; a zero since covers everything.
func (s *Service) Summarize(since time.Time) (*Summary, error) {
	query := s.db.Model(&domain.BehaviorSample{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var samples []domain.BehaviorSample
	if err := query.Find(&samples).Error; err != nil {
		return nil, err
	}

	sum := &Summary{Sessions: int64(len(samples))}
	if len(samples) == 0 {
		return sum, nil
	}

	scrolls := make([]float64, 0, len(samples))
	times := make([]float64, 0, len(samples))
	clicks := make([]float64, 0, len(samples))
	ctaSeen := 0
	for _, sm := range samples {
		scrolls = append(scrolls, sm.Scroll)
		times = append(times, float64(sm.Time))
		clicks = append(clicks, float64(sm.Clicks))
		if sm.CtaSeen {
			ctaSeen++
		}
		if sm.Converted {
			sum.Conversions++
		}
	}

	sum.ConversionRate = float64(sum.Conversions) / float64(sum.Sessions)
	sum.CtaSeenRate = float64(ctaSeen) / float64(sum.Sessions)
	sum.MeanScroll, _ = stats.Mean(scrolls)
	sum.MedianScroll, _ = stats.Median(scrolls)
	sum.MeanTime, _ = stats.Mean(times)
	sum.MedianTime, _ = stats.Median(times)
	sum.MeanClicks, _ = stats.Mean(clicks)
	return sum, nil
}

// Rollup publishes the last 24h aggregates as gauges. Scheduled
// periodically by the job runner.
func (s *Service) Rollup() error {
	sum, err := s.Summarize(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return err
	}
	metrics.SetGauge("behavior_sessions_24h", sum.Sessions)
	metrics.SetGaugeFloat("behavior_conversion_rate_24h", sum.ConversionRate)
	metrics.SetGaugeFloat("behavior_mean_scroll_24h", sum.MeanScroll)
	metrics.SetGaugeFloat("behavior_median_time_24h", sum.MedianTime)
	zap.L().Info("behavior rollup",
		zap.Int64("sessions", sum.Sessions),
		zap.Float64("conversion_rate", sum.ConversionRate))
	return nil
}

// Purge drops samples older than the retention window.
func (s *Service) Purge(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.Where("created_at < ?", cutoff).Delete(&domain.BehaviorSample{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		zap.S().Infof("purged %d behavior samples older than %s", result.RowsAffected, cutoff.Format("2006-01-02"))
	}
	return nil
}
