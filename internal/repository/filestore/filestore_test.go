package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/praio-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const registryDoc = `{
	"IC01": {
		"nome": "Icaraí",
		"coordenadas_decimais": [-22.9, -43.1],
		"specific_location": "Em frente à rua X",
		"praia": "Icaraí",
		"leitura_atual": {"timestamp": "stale"}
	}
}`

func TestRegistryRepository_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(registryDoc), 0o644))

	registry, err := NewRegistryRepository(path).Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, registry, "IC01")

	entry := registry["IC01"]
	assert.Equal(t, "IC01", entry.Point.Code)
	assert.Equal(t, "Icaraí", entry.Point.Name)
	assert.Equal(t, []float64{-22.9, -43.1}, entry.Point.Coordinates)
	assert.Contains(t, entry.Fields, "praia")
	assert.NotContains(t, entry.Fields, domain.KeyReading)
}

func TestRegistryRepository_LoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := NewRegistryRepository(filepath.Join(dir, "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrRegistryLoad)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = NewRegistryRepository(broken).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrRegistryLoad)
}

func TestSnapshotRepository_LoadTolerant(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	snapshot, err := NewSnapshotRepository(filepath.Join(dir, "none.json"), zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{\"IC01\": "), 0o644))
	snapshot, err = NewSnapshotRepository(corrupt, zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestSnapshotRepository_SaveAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pontos.json")
	repo := NewSnapshotRepository(path, zap.NewNop())
	ctx := context.Background()

	snapshot := domain.Snapshot{
		"IC01": json.RawMessage(`{"nome":"Icaraí","note":"<b>"}`),
		"CH00": json.RawMessage(`{"nome":"Charitas"}`),
	}
	require.NoError(t, repo.Save(ctx, snapshot))

	data, sum, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"CH00\": {")
	assert.Contains(t, string(data), "Icaraí")
	assert.Contains(t, string(data), "<b>")

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nome":"Icaraí","note":"<b>"}`, string(loaded["IC01"]))

	// identical content, identical hash
	require.NoError(t, repo.Save(ctx, loaded))
	again, err := repo.Hash(ctx)
	require.NoError(t, err)
	assert.Equal(t, sum, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSnapshotRepository_UpdateRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pontos.json")
	repo := NewSnapshotRepository(path, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Snapshot{
		"IC01": json.RawMessage(`{"nome":"Icaraí","leitura_atual":{"timestamp":"2025-01-15T10:00"}}`),
	}))

	n, err := repo.UpdateRecords(ctx, []string{"IC01", "XX99"}, func(code string, record json.RawMessage) (json.RawMessage, error) {
		return domain.WithRating(record, domain.RatingSummary{domain.CriterionSafety: 4})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, loaded, "XX99")
	assert.JSONEq(t, `{
		"nome": "Icaraí",
		"leitura_atual": {"timestamp": "2025-01-15T10:00"},
		"avaliacao_media": {"seguranca": 4}
	}`, string(loaded["IC01"]))
}

func TestSnapshotRepository_UpdateRecordsMissingFile(t *testing.T) {
	repo := NewSnapshotRepository(filepath.Join(t.TempDir(), "none.json"), zap.NewNop())

	_, err := repo.UpdateRecords(context.Background(), []string{"IC01"}, func(string, json.RawMessage) (json.RawMessage, error) {
		return nil, nil
	})
	assert.Error(t, err)
}
