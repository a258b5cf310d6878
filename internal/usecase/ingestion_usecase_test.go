package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/repository/filestore"
	"github.com/praio-service/internal/usecase"
)

const registryJSON = `{
	"GB000": {"nome": "Icaraí", "coordenadas_decimais": [-22.9, -43.1], "municipio": "Niterói"},
	"GB001": {"nome": "Flechas", "coordenadas_decimais": [-22.91, -43.11]},
	"GB002": {"nome": "Itaipu", "coordenadas_decimais": [-22.97, -43.04]}
}`

var cycleNow = time.Date(2024, 1, 15, 10, 25, 0, 0, time.UTC)

type ingestionFixture struct {
	registry  *MockRegistryRepository
	readings  *MockReadingFetcher
	bulletin  *MockComplianceSource
	notifier  *MockRefreshNotifier
	path      string
	snapshots interface {
		Load(ctx context.Context) (domain.Snapshot, error)
		Save(ctx context.Context, snapshot domain.Snapshot) error
	}
}

func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()
	registry, err := domain.ParseRegistry([]byte(registryJSON))
	require.NoError(t, err)

	f := &ingestionFixture{
		registry: &MockRegistryRepository{},
		readings: &MockReadingFetcher{},
		bulletin: &MockComplianceSource{},
		notifier: &MockRefreshNotifier{},
		path:     filepath.Join(t.TempDir(), "pontos.json"),
	}
	f.registry.On("Load", mock.Anything).Return(registry, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *ingestionFixture) useCase(concurrency int) *usecase.IngestionUseCase {
	snapshots := filestore.NewSnapshotRepository(f.path, zap.NewNop())
	f.snapshots = snapshots
	return usecase.NewIngestionUseCase(
		f.registry,
		snapshots,
		f.readings,
		f.bulletin,
		f.notifier,
		usecase.IngestionOptions{
			Location:    time.UTC,
			Concurrency: concurrency,
			Now:         func() time.Time { return cycleNow },
		},
		zap.NewNop(),
	)
}

func (f *ingestionFixture) reading(code string, reading domain.CurrentReading) {
	f.readings.On("Fetch", mock.Anything, mock.MatchedBy(func(p domain.MonitoringPoint) bool {
		return p.Code == code
	}), mock.Anything).Return(reading)
}

func freshReading(temp float64) domain.CurrentReading {
	rained := false
	return domain.CurrentReading{
		Timestamp:    "2024-01-15T10:00",
		Temperature:  &temp,
		UVIndex:      ptr(6),
		RainedLast8h: &rained,
		Forecast24h:  []domain.ForecastEntry{{Hour: "2024-01-15T10:00", Temperature: &temp}},
	}
}

func failedReading() domain.CurrentReading {
	return domain.NewEmptyReading(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
}

func decodeRecord(t *testing.T, raw json.RawMessage) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields
}

func TestIngestionUseCase_RunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh readings with compliance", func(t *testing.T) {
		f := newIngestionFixture(t)
		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{"GB000": true, "GB001": false})
		f.reading("GB000", freshReading(25))
		f.reading("GB001", freshReading(26))
		f.reading("GB002", freshReading(27))

		result, err := f.useCase(1).RunCycle(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Points)
		assert.Equal(t, 3, result.Fresh)
		assert.Equal(t, 0, result.Fallbacks)
		assert.Equal(t, "2024-01-15T10:00", result.Hour.Format(domain.TimestampLayout))

		stored, err := f.snapshots.Load(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 3)

		record, err := domain.ParsePointRecord("GB000", stored["GB000"])
		require.NoError(t, err)
		assert.Equal(t, "Icaraí", record.Point.Name)
		require.NotNil(t, record.Reading.Compliance)
		assert.True(t, *record.Reading.Compliance)
		assert.Equal(t, 25.0, *record.Reading.Temperature)
		assert.JSONEq(t, `"Niterói"`, string(decodeRecord(t, stored["GB000"])["municipio"]))

		other, err := domain.ParsePointRecord("GB002", stored["GB002"])
		require.NoError(t, err)
		assert.Nil(t, other.Reading.Compliance)

		f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(e domain.SnapshotRefreshedEvent) bool {
			return e.Points == 3 && e.Fallbacks == 0
		}))
	})

	t.Run("failed fetch carries previous record forward verbatim", func(t *testing.T) {
		f := newIngestionFixture(t)
		uc := f.useCase(1)

		previous := json.RawMessage(`{"nome":"Icaraí","coordenadas_decimais":[-22.9,-43.1],"leitura_atual":{"timestamp":"2024-01-15T09:00","temperature_2m":24.5,"previsao_24h":[]},"avaliacao_media":{"limpeza":4}}`)
		require.NoError(t, f.snapshots.Save(ctx, domain.Snapshot{"GB000": previous}))

		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{"GB000": false})
		f.reading("GB000", failedReading())
		f.reading("GB001", freshReading(26))
		f.reading("GB002", freshReading(27))

		result, err := uc.RunCycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Fallbacks)

		stored, err := f.snapshots.Load(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, string(previous), string(stored["GB000"]))
	})

	t.Run("failed fetch without previous record stores static fields", func(t *testing.T) {
		f := newIngestionFixture(t)
		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{"GB001": true})
		f.reading("GB000", freshReading(25))
		f.reading("GB001", failedReading())
		f.reading("GB002", freshReading(27))

		result, err := f.useCase(1).RunCycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Fallbacks)

		stored, err := f.snapshots.Load(ctx)
		require.NoError(t, err)
		require.Contains(t, stored, "GB001")

		fields := decodeRecord(t, stored["GB001"])
		assert.JSONEq(t, `"Flechas"`, string(fields["nome"]))
		assert.JSONEq(t, `{"timestamp":"2024-01-15T10:00","previsao_24h":[],"balneabilidade":true}`, string(fields[domain.KeyReading]))
		assert.NotContains(t, fields, domain.KeyRating)
	})

	t.Run("fresh reading keeps the previous rating", func(t *testing.T) {
		f := newIngestionFixture(t)
		uc := f.useCase(1)
		previous := json.RawMessage(`{"nome":"Icaraí","leitura_atual":{"timestamp":"2024-01-15T09:00","previsao_24h":[]},"avaliacao_media":{"limpeza":4,"seguranca":3}}`)
		require.NoError(t, f.snapshots.Save(ctx, domain.Snapshot{"GB000": previous}))

		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{})
		f.reading("GB000", freshReading(25))
		f.reading("GB001", freshReading(26))
		f.reading("GB002", freshReading(27))

		_, err := uc.RunCycle(ctx)
		require.NoError(t, err)

		stored, err := f.snapshots.Load(ctx)
		require.NoError(t, err)
		record, err := domain.ParsePointRecord("GB000", stored["GB000"])
		require.NoError(t, err)
		assert.Equal(t, domain.RatingSummary{domain.CriterionCleanliness: 4, domain.CriterionSafety: 3}, record.Rating)
		assert.Equal(t, "2024-01-15T10:00", record.Reading.Timestamp)
	})

	t.Run("identical inputs produce an identical snapshot", func(t *testing.T) {
		f := newIngestionFixture(t)
		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{"GB000": true})
		f.reading("GB000", freshReading(25))
		f.reading("GB001", failedReading())
		f.reading("GB002", freshReading(27))

		_, err := f.useCase(1).RunCycle(ctx)
		require.NoError(t, err)
		first, err := os.ReadFile(f.path)
		require.NoError(t, err)

		_, err = f.useCase(4).RunCycle(ctx)
		require.NoError(t, err)
		second, err := os.ReadFile(f.path)
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})

	t.Run("notify failure is not fatal", func(t *testing.T) {
		f := newIngestionFixture(t)
		f.notifier = &MockRefreshNotifier{}
		f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		f.bulletin.On("Refresh", mock.Anything).Return(map[string]bool{})
		f.reading("GB000", freshReading(25))
		f.reading("GB001", freshReading(26))
		f.reading("GB002", freshReading(27))

		result, err := f.useCase(2).RunCycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Fresh)
		f.notifier.AssertExpectations(t)
	})
}

func TestIngestionUseCase_RunCycle_RegistryUnreadable(t *testing.T) {
	registry := &MockRegistryRepository{}
	registry.On("Load", mock.Anything).Return(nil, domain.ErrRegistryLoad)
	snapshots := &MockSnapshotRepository{}
	bulletinSource := &MockComplianceSource{}

	uc := usecase.NewIngestionUseCase(registry, snapshots, &MockReadingFetcher{}, bulletinSource, nil,
		usecase.IngestionOptions{}, zap.NewNop())

	result, err := uc.RunCycle(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrRegistryLoad)
	snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	bulletinSource.AssertNotCalled(t, "Refresh", mock.Anything)
}
