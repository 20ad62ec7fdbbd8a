package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

type dashboardRepoStub struct {
	teachers int
	staff    int
	calls    int
}

func (s *dashboardRepoStub) CountTeachers(ctx context.Context) (int, error) {
	s.calls++
	return s.teachers, nil
}

func (s *dashboardRepoStub) CountStaff(ctx context.Context) (int, error) {
	return s.staff, nil
}

func (s *dashboardRepoStub) PensionProjection(ctx context.Context, fromYear int) ([]models.PensionYearCount, error) {
	return []models.PensionYearCount{{Year: fromYear + 1, Count: 4}}, nil
}

func (s *dashboardRepoStub) PensionDetail(ctx context.Context, year int) ([]models.PensionEmployee, error) {
	return []models.PensionEmployee{{NamaPegawai: "BUDI SANTOSO"}}, nil
}

func (s *dashboardRepoStub) KecamatanStats(ctx context.Context) ([]models.UnitCount, error) {
	return []models.UnitCount{{Kecamatan: "Menteng", Count: 12}}, nil
}

type countsStub struct {
	pending int
	unread  int
}

func (s *countsStub) CountPending(ctx context.Context) (int, error) { return s.pending, nil }
func (s *countsStub) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.unread, nil
}

type cacheStub struct {
	store map[string][]byte
	sets  int
}

func newCacheStub() *cacheStub { return &cacheStub{store: make(map[string][]byte)} }

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := s.store[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	if stats, ok := dest.(*models.DashboardStats); ok {
		stats.TotalGuru = 99
	}
	return nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.store[key] = []byte("cached")
	s.sets++
	return nil
}

func TestDashboardServiceStatsComputesAndCaches(t *testing.T) {
	repo := &dashboardRepoStub{teachers: 10, staff: 5}
	cache := newCacheStub()
	svc := NewDashboardService(repo, &countsStub{}, cache, nil, DashboardConfig{CacheEnabled: true, CacheTTL: time.Minute}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, stats.TotalGuru)
	require.Equal(t, 5, stats.TotalTendik)
	require.Len(t, stats.PensionProjection, 1)
	require.Equal(t, 1, cache.sets)

	// second call is served from cache without recomputation
	cached, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 99, cached.TotalGuru)
	require.Equal(t, 1, repo.calls)
}

func TestDashboardServiceStatsSkipsDisabledCache(t *testing.T) {
	repo := &dashboardRepoStub{teachers: 3}
	cache := newCacheStub()
	svc := NewDashboardService(repo, &countsStub{}, cache, nil, DashboardConfig{CacheEnabled: false}, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, cache.sets)
}

func TestDashboardServiceNotificationsByRole(t *testing.T) {
	svc := NewDashboardService(&dashboardRepoStub{}, &countsStub{pending: 7, unread: 2}, nil, nil, DashboardConfig{}, nil)

	reviewer, err := svc.Notifications(context.Background(), &models.JWTClaims{UserID: "k-1", Role: models.RoleKasudin})
	require.NoError(t, err)
	require.Equal(t, 7, reviewer.Pending)
	require.Zero(t, reviewer.Unread)

	proposer, err := svc.Notifications(context.Background(), &models.JWTClaims{UserID: "g-1", Role: models.RoleGuruTendik})
	require.NoError(t, err)
	require.Equal(t, 2, proposer.Unread)
	require.Zero(t, proposer.Pending)
}

func TestDashboardServicePensionDetailValidatesYear(t *testing.T) {
	svc := NewDashboardService(&dashboardRepoStub{}, &countsStub{}, nil, nil, DashboardConfig{}, nil)

	_, err := svc.PensionDetail(context.Background(), 10)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	employees, err := svc.PensionDetail(context.Background(), 2027)
	require.NoError(t, err)
	require.Len(t, employees, 1)
}
