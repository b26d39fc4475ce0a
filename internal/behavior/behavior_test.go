package behavior

import (
	"math"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.BehaviorSample{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestIngestUpsertsPerSession(t *testing.T) {
	svc := NewService(newTestDB(t), nil)

	if err := svc.Ingest(domain.BehaviorSample{SessionId: "s1", Scroll: 0.3, Time: 10}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := svc.Ingest(domain.BehaviorSample{SessionId: "s1", Scroll: 0.8, Time: 45, Clicks: 3, CtaSeen: true}); err != nil {
		t.Fatalf("ingest update: %v", err)
	}

	sum, err := svc.Summarize(time.Time{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Sessions != 1 {
		t.Fatalf("repeated posts for one session must keep one row, got %d", sum.Sessions)
	}
	if math.Abs(sum.MeanScroll-0.8) > 1e-9 {
		t.Fatalf("latest snapshot must win, got scroll %v", sum.MeanScroll)
	}
}

func TestIngestIgnoresAnonymousSample(t *testing.T) {
	svc := NewService(newTestDB(t), nil)
	if err := svc.Ingest(domain.BehaviorSample{Scroll: 0.5}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	sum, _ := svc.Summarize(time.Time{})
	if sum.Sessions != 0 {
		t.Fatal("samples without a session id are dropped")
	}
}

func TestCtaSeenIsSticky(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	_ = svc.Ingest(domain.BehaviorSample{SessionId: "s1", CtaSeen: true})
	_ = svc.Ingest(domain.BehaviorSample{SessionId: "s1", CtaSeen: false})

	var sample domain.BehaviorSample
	if err := db.Where("session_id = ?", "s1").First(&sample).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !sample.CtaSeen {
		t.Fatal("a seen call to action must not be unseen by a later post")
	}
}

func TestMarkConvertedAndSummary(t *testing.T) {
	svc := NewService(newTestDB(t), nil)

	samples := []domain.BehaviorSample{
		{SessionId: "s1", Scroll: 0.2, Time: 10, Clicks: 1},
		{SessionId: "s2", Scroll: 0.6, Time: 30, Clicks: 2, CtaSeen: true},
		{SessionId: "s3", Scroll: 1.0, Time: 80, Clicks: 5, CtaSeen: true},
		{SessionId: "s4", Scroll: 0.4, Time: 20, Clicks: 0},
	}
	for _, s := range samples {
		if err := svc.Ingest(s); err != nil {
			t.Fatalf("ingest %s: %v", s.SessionId, err)
		}
	}
	if err := svc.MarkConverted("s3"); err != nil {
		t.Fatalf("mark converted: %v", err)
	}
	if err := svc.MarkConverted(""); err != nil {
		t.Fatalf("empty session id must be a no-op: %v", err)
	}

	sum, err := svc.Summarize(time.Time{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Sessions != 4 || sum.Conversions != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if math.Abs(sum.ConversionRate-0.25) > 1e-9 {
		t.Fatalf("conversion rate: %v", sum.ConversionRate)
	}
	if math.Abs(sum.CtaSeenRate-0.5) > 1e-9 {
		t.Fatalf("cta seen rate: %v", sum.CtaSeenRate)
	}
	if math.Abs(sum.MeanScroll-0.55) > 1e-9 {
		t.Fatalf("mean scroll: %v", sum.MeanScroll)
	}
	if math.Abs(sum.MedianScroll-0.5) > 1e-9 {
		t.Fatalf("median scroll: %v", sum.MedianScroll)
	}
	if math.Abs(sum.MedianTime-25) > 1e-9 {
		t.Fatalf("median time: %v", sum.MedianTime)
	}
	if math.Abs(sum.MeanClicks-2) > 1e-9 {
		t.Fatalf("mean clicks: %v", sum.MeanClicks)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	svc := NewService(newTestDB(t), nil)
	sum, err := svc.Summarize(time.Time{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Sessions != 0 || sum.ConversionRate != 0 {
		t.Fatalf("empty summary must be all zeros: %+v", sum)
	}
}
