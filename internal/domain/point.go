package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrRegistryLoad - the static point registry could not be read. Fatal for a cycle.
var ErrRegistryLoad = errors.New("registry load failed")

// Snapshot record keys owned by the pipeline. Everything else on a record comes from the registry.
const (
	KeyReading = "leitura_atual"
	KeyRating  = "avaliacao_media"
)

// MonitoringPoint - static descriptor of a beach monitoring location
type MonitoringPoint struct {
	Code             string    `json:"-"`
	Name             string    `json:"nome"`
	Coordinates      []float64 `json:"coordenadas_decimais"`
	LandCoordinates  []float64 `json:"coordenadas_terra_decimais,omitempty"`
	SpecificLocation string    `json:"specific_location,omitempty"`
}

// LatLon returns the water-sampling coordinates.
func (p MonitoringPoint) LatLon() (lat, lon float64, ok bool) {
	if len(p.Coordinates) < 2 {
		return 0, 0, false
	}
	return p.Coordinates[0], p.Coordinates[1], true
}

// RegistryEntry keeps the typed descriptor plus every static key verbatim,
// so registry fields the pipeline does not know about still reach the snapshot.
type RegistryEntry struct {
	Point  MonitoringPoint
	Fields map[string]json.RawMessage
}

// Registry - code -> static entry
type Registry map[string]RegistryEntry

// Codes returns the registry codes in lexical order.
func (r Registry) Codes() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ParseRegistry decodes a registry document.
func ParseRegistry(data []byte) (Registry, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryLoad, err)
	}

	registry := make(Registry, len(raw))
	for code, fields := range raw {
		// pipeline-owned keys never come from the registry
		delete(fields, KeyReading)
		delete(fields, KeyRating)

		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: point %s: %v", ErrRegistryLoad, code, err)
		}
		var point MonitoringPoint
		if err := json.Unmarshal(encoded, &point); err != nil {
			return nil, fmt.Errorf("%w: point %s: %v", ErrRegistryLoad, code, err)
		}
		point.Code = code
		registry[code] = RegistryEntry{Point: point, Fields: fields}
	}

	return registry, nil
}
