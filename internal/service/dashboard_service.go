package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

const dashboardStatsKey = "dashboard:stats"

type dashboardRepository interface {
	CountTeachers(ctx context.Context) (int, error)
	CountStaff(ctx context.Context) (int, error)
	PensionProjection(ctx context.Context, fromYear int) ([]models.PensionYearCount, error)
	PensionDetail(ctx context.Context, year int) ([]models.PensionEmployee, error)
	KecamatanStats(ctx context.Context) ([]models.UnitCount, error)
}

type notificationCounter interface {
	CountPending(ctx context.Context) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// DashboardConfig tunes the stats cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DashboardService aggregates landing-page statistics and the per-role
// notification badges.
type DashboardService struct {
	repo          dashboardRepository
	notifications notificationCounter
	cache         statsCache
	metrics       cacheObserver
	config        DashboardConfig
	logger        *zap.Logger
	now           func() time.Time
}

// NewDashboardService constructs a DashboardService. metrics may be nil.
func NewDashboardService(repo dashboardRepository, notifications notificationCounter, cache statsCache, metrics cacheObserver, config DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:          repo,
		notifications: notifications,
		cache:         cache,
		metrics:       metrics,
		config:        config,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Stats computes the dashboard aggregates, serving from cache when the
// cached copy is still fresh. Cache failures degrade to recomputation.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.config.CacheEnabled && s.cache != nil {
		var cached models.DashboardStats
		err := s.cache.Get(ctx, dashboardStatsKey, &cached)
		if err == nil {
			s.recordCache(true)
			return &cached, nil
		}
		s.recordCache(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	totalGuru, err := s.repo.CountTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	totalTendik, err := s.repo.CountStaff(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count staff")
	}
	projection, err := s.repo.PensionProjection(ctx, s.now().Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to project pensions")
	}
	kecamatan, err := s.repo.KecamatanStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate districts")
	}

	stats := &models.DashboardStats{
		TotalGuru:         totalGuru,
		TotalTendik:       totalTendik,
		PensionProjection: projection,
		KecamatanStats:    kecamatan,
		GeneratedAt:       s.now(),
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *DashboardService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

// PensionDetail lists employees retiring in the given year.
func (s *DashboardService) PensionDetail(ctx context.Context, year int) ([]models.PensionEmployee, error) {
	if year < 1900 || year > 2200 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid projection year")
	}
	employees, err := s.repo.PensionDetail(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pension detail")
	}
	return employees, nil
}

// Notifications returns the badge counters for the caller's role:
// reviewers see the open-request queue size, proposers see their
// decided-but-unseen requests.
func (s *DashboardService) Notifications(ctx context.Context, claims *models.JWTClaims) (*models.NotificationCounts, error) {
	counts := &models.NotificationCounts{}
	switch claims.Role {
	case models.RoleAdmin, models.RoleKasudin:
		pending, err := s.notifications.CountPending(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
		}
		counts.Pending = pending
	case models.RoleGuruTendik:
		unread, err := s.notifications.CountUnread(ctx, claims.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread decisions")
		}
		counts.Unread = unread
	}
	return counts, nil
}
