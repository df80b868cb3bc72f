package providers

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-resolver/internal/weather"
)

// Provider names accepted by New.
const (
	NameOpenMeteo       = "openmeteo"
	NameWeatherAPI      = "weatherapi"
	NameOpenWeather     = "openweather"
	NameGoogleOpenMeteo = "google-openmeteo"
)

// Options carries everything a provider may need at construction time.
type Options struct {
	HTTP HTTPClientConfig

	// Only used by google-openmeteo.
	GoogleAPIKey  string
	GoogleCountry string
}

// New builds the single source selected by name.
func New(name string, opts Options) (weather.Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameOpenMeteo:
		return NewOpenMeteoProvider(opts.HTTP), nil
	case NameWeatherAPI:
		return NewWeatherAPIProvider(opts.HTTP), nil
	case NameOpenWeather, "openweathermap":
		return NewOpenWeatherProvider(opts.HTTP), nil
	case NameGoogleOpenMeteo:
		if opts.GoogleAPIKey == "" {
			return nil, fmt.Errorf("provider %s requires a google geocoder api key", NameGoogleOpenMeteo)
		}
		g, err := NewGoogleGeocoder(opts.GoogleAPIKey, opts.GoogleCountry)
		if err != nil {
			return nil, err
		}
		return NewOpenMeteoProvider(opts.HTTP, WithGeocoder(NameGoogleOpenMeteo, g)), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
