package filestore

import (
	"context"
	"fmt"
	"os"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
)

type registryRepository struct {
	path string
}

// NewRegistryRepository reads the static point registry from path.
func NewRegistryRepository(path string) repository.RegistryRepository {
	return &registryRepository{path: path}
}

func (r *registryRepository) Load(ctx context.Context) (domain.Registry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistryLoad, err)
	}
	return domain.ParseRegistry(data)
}
