package domain

// HourlySeries - parallel-array hourly time series as returned by the forecast provider.
// Values holds one slice per requested field; nil entries are gaps in the upstream data.
type HourlySeries struct {
	Time   []string
	Values map[string][]*float64
}

// Index returns the position of key on the time axis, -1 when absent.
func (s HourlySeries) Index(key string) int {
	for i, t := range s.Time {
		if t == key {
			return i
		}
	}
	return -1
}

// At returns field[idx], nil when the field is missing or shorter than idx+1.
func (s HourlySeries) At(field string, idx int) *float64 {
	values, ok := s.Values[field]
	if !ok || idx < 0 || idx >= len(values) {
		return nil
	}
	if values[idx] == nil {
		return nil
	}
	v := *values[idx]
	return &v
}

// Field returns the whole series of a field.
func (s HourlySeries) Field(field string) []*float64 {
	return s.Values[field]
}
