package domain

import "time"

// TimestampLayout - hour key used by the forecast provider and stored on readings
const TimestampLayout = "2006-01-02T15:04"

// ForecastHours - length of the forecast slice attached to a reading
const ForecastHours = 24

// RainLookbackHours - window checked for the "rained recently" flag
const RainLookbackHours = 8

// CurrentReading - latest meteorological/marine measurement set for a point.
// Nil pointers are absent values and are omitted from the snapshot.
type CurrentReading struct {
	Timestamp                string          `json:"timestamp"`
	Temperature              *float64        `json:"temperature_2m,omitempty"`
	Precipitation            *float64        `json:"precipitation,omitempty"`
	PrecipitationProbability *float64        `json:"precipitation_probability,omitempty"`
	Rain                     *float64        `json:"rain,omitempty"`
	RelativeHumidity         *float64        `json:"relative_humidity_2m,omitempty"`
	ApparentTemperature      *float64        `json:"apparent_temperature,omitempty"`
	WindSpeed                *float64        `json:"wind_speed_10m,omitempty"`
	WindDirection            *float64        `json:"wind_direction_10m,omitempty"`
	UVIndex                  *float64        `json:"uv_index,omitempty"`
	WeatherCode              *float64        `json:"weather_code,omitempty"`
	WaveHeight               *float64        `json:"wave_height,omitempty"`
	WavePeriod               *float64        `json:"wave_period,omitempty"`
	RainedLast8h             *bool           `json:"choveu_8_horas,omitempty"`
	Forecast24h              []ForecastEntry `json:"previsao_24h"`
	Compliance               *bool           `json:"balneabilidade,omitempty"`
}

// ForecastEntry - one hour of the 24h forecast slice
type ForecastEntry struct {
	Hour                     string   `json:"hora"`
	Temperature              *float64 `json:"temperatura,omitempty"`
	PrecipitationProbability *float64 `json:"precipitacao_prob,omitempty"`
	WeatherCode              *float64 `json:"weather_code,omitempty"`
}

// NewEmptyReading is the "no data this cycle" reading.
func NewEmptyReading(hour time.Time) CurrentReading {
	return CurrentReading{
		Timestamp:   hour.Format(TimestampLayout),
		Forecast24h: []ForecastEntry{},
	}
}

// Failed reports whether the cycle's fetch is considered failed for the point.
func (r CurrentReading) Failed() bool {
	return r.Temperature == nil
}

// MeteoFields - meteorological category of the reading, absent values skipped
func (r CurrentReading) MeteoFields() map[string]interface{} {
	out := make(map[string]interface{})
	putFloat(out, "temperature_2m", r.Temperature)
	putFloat(out, "precipitation", r.Precipitation)
	putFloat(out, "precipitation_probability", r.PrecipitationProbability)
	putFloat(out, "rain", r.Rain)
	putFloat(out, "relative_humidity_2m", r.RelativeHumidity)
	putFloat(out, "apparent_temperature", r.ApparentTemperature)
	putFloat(out, "wind_speed_10m", r.WindSpeed)
	putFloat(out, "wind_direction_10m", r.WindDirection)
	putFloat(out, "uv_index", r.UVIndex)
	putFloat(out, "weather_code", r.WeatherCode)
	if r.RainedLast8h != nil {
		out["choveu_8_horas"] = *r.RainedLast8h
	}
	return out
}

// MarineFields - marine category of the reading; water compliance travels with it
func (r CurrentReading) MarineFields() map[string]interface{} {
	out := make(map[string]interface{})
	putFloat(out, "wave_height", r.WaveHeight)
	putFloat(out, "wave_period", r.WavePeriod)
	if r.Compliance != nil {
		out["balneabilidade"] = *r.Compliance
	}
	return out
}

// ReferenceHour truncates now to the hour in loc.
func ReferenceHour(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}

func putFloat(m map[string]interface{}, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}
