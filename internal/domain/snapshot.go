package domain

import (
	"encoding/json"
	"fmt"
)

// Snapshot - full persisted state: code -> merged point record kept as raw JSON,
// so a carried-forward record is written back byte-for-byte.
type Snapshot map[string]json.RawMessage

// BuildRecord merges the static registry fields with a fresh reading.
// A previous rating summary, if any, is kept on the new record.
func BuildRecord(entry RegistryEntry, reading CurrentReading, previous json.RawMessage) (json.RawMessage, error) {
	record := make(map[string]json.RawMessage, len(entry.Fields)+2)
	for k, v := range entry.Fields {
		record[k] = v
	}

	encoded, err := json.Marshal(reading)
	if err != nil {
		return nil, fmt.Errorf("encode reading for %s: %w", entry.Point.Code, err)
	}
	record[KeyReading] = encoded

	if rating, ok := rawField(previous, KeyRating); ok {
		record[KeyRating] = rating
	}

	return json.Marshal(record)
}

// WithRating returns the record with its rating summary replaced, all other keys untouched.
func WithRating(record json.RawMessage, summary RatingSummary) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	fields[KeyRating] = encoded
	return json.Marshal(fields)
}

// PointRecord - decoded view of one snapshot record used by the read side
type PointRecord struct {
	Code    string
	Point   MonitoringPoint
	Reading *CurrentReading
	Rating  RatingSummary
	Raw     json.RawMessage
}

// ParsePointRecord decodes a snapshot record.
func ParsePointRecord(code string, raw json.RawMessage) (*PointRecord, error) {
	var doc struct {
		MonitoringPoint
		Reading *CurrentReading `json:"leitura_atual"`
		Rating  RatingSummary   `json:"avaliacao_media"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode point %s: %w", code, err)
	}
	doc.MonitoringPoint.Code = code
	return &PointRecord{
		Code:    code,
		Point:   doc.MonitoringPoint,
		Reading: doc.Reading,
		Rating:  doc.Rating,
		Raw:     raw,
	}, nil
}

func rawField(record json.RawMessage, key string) (json.RawMessage, bool) {
	if len(record) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, false
	}
	v, ok := fields[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}
