package usecase_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/praio-service/internal/domain"
)

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) Load(ctx context.Context) (domain.Registry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Registry), args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Load(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) UpdateRecords(
	ctx context.Context,
	codes []string,
	fn func(code string, record json.RawMessage) (json.RawMessage, error),
) (int, error) {
	args := m.Called(ctx, codes, fn)
	return args.Int(0), args.Error(1)
}

func (m *MockSnapshotRepository) Read(ctx context.Context) ([]byte, uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(uint64), args.Error(2)
}

func (m *MockSnapshotRepository) Hash(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

type MockForecastRepository struct {
	mock.Mock
}

func (m *MockForecastRepository) Forecast(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error) {
	args := m.Called(ctx, lat, lon, day)
	return args.Get(0).(domain.HourlySeries), args.Error(1)
}

func (m *MockForecastRepository) Marine(ctx context.Context, lat, lon float64, day time.Time) (domain.HourlySeries, error) {
	args := m.Called(ctx, lat, lon, day)
	return args.Get(0).(domain.HourlySeries), args.Error(1)
}

type MockBulletinRepository struct {
	mock.Mock
}

func (m *MockBulletinRepository) LatestURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBulletinRepository) Download(ctx context.Context, documentURL, path string) error {
	args := m.Called(ctx, documentURL, path)
	return args.Error(0)
}

func (m *MockBulletinRepository) Extract(path string) (map[string]bool, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) FindByPointAndUser(ctx context.Context, pointID, userID string) (*domain.VoteRecord, error) {
	args := m.Called(ctx, pointID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoteRecord), args.Error(1)
}

func (m *MockVoteRepository) FindByPoint(ctx context.Context, pointID string) ([]*domain.VoteRecord, error) {
	args := m.Called(ctx, pointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VoteRecord), args.Error(1)
}

func (m *MockVoteRepository) List(ctx context.Context) ([]*domain.VoteRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VoteRecord), args.Error(1)
}

func (m *MockVoteRepository) Insert(ctx context.Context, vote *domain.VoteRecord) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockVoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVoteRepository) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVoteRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockReadingFetcher struct {
	mock.Mock
}

func (m *MockReadingFetcher) Fetch(ctx context.Context, point domain.MonitoringPoint, hour time.Time) domain.CurrentReading {
	args := m.Called(ctx, point, hour)
	return args.Get(0).(domain.CurrentReading)
}

type MockComplianceSource struct {
	mock.Mock
}

func (m *MockComplianceSource) Refresh(ctx context.Context) map[string]bool {
	args := m.Called(ctx)
	return args.Get(0).(map[string]bool)
}

type MockRefreshNotifier struct {
	mock.Mock
}

func (m *MockRefreshNotifier) Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// hourlySeries builds a series of n hours starting at start with the given generators.
func hourlySeries(start time.Time, n int, fields map[string]func(i int) *float64) domain.HourlySeries {
	s := domain.HourlySeries{
		Time:   make([]string, n),
		Values: make(map[string][]*float64, len(fields)),
	}
	for i := 0; i < n; i++ {
		s.Time[i] = start.Add(time.Duration(i) * time.Hour).Format(domain.TimestampLayout)
	}
	for name, gen := range fields {
		values := make([]*float64, n)
		for i := 0; i < n; i++ {
			values[i] = gen(i)
		}
		s.Values[name] = values
	}
	return s
}

func constant(v float64) func(int) *float64 {
	return func(int) *float64 { return &v }
}

func ptr(v float64) *float64 {
	return &v
}
