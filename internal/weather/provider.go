package weather

import "context"

// Source abstracts the configured upstream (e.g. Open-Meteo, WeatherAPI.com,
// OpenWeatherMap). Implementations return classified *Error values for
// missing data and transport failures.
type Source interface {
	Name() string
	Current(ctx context.Context, city, apiKey string) (WeatherResult, error)
}
