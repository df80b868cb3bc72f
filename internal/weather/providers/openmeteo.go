package providers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-resolver/internal/weather"
)

const (
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	openMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"

	openMeteoCurrentFields = "temperature_2m,apparent_temperature,weather_code,wind_speed_10m"
)

// Geocoder resolves a city name to its best-matching location.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (weather.Location, error)
}

// OpenMeteoProvider is a two-call source: geocoding first, then current
// conditions for the resolved coordinates.
type OpenMeteoProvider struct {
	name     string
	geocoder Geocoder
	search   *endpoint // used by the built-in geocoder only
	forecast *endpoint
}

// OpenMeteoOption customizes an OpenMeteoProvider.
type OpenMeteoOption func(*OpenMeteoProvider)

// WithGeocoder replaces the Open-Meteo geocoding step.
func WithGeocoder(name string, g Geocoder) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.name = name
		p.geocoder = g
	}
}

// WithOpenMeteoURLs points the provider at different endpoints. Empty values
// keep the defaults. It combines with WithGeocoder in either order; the
// geocoding URL has no effect once the geocoder is replaced.
func WithOpenMeteoURLs(geocodingURL, forecastURL string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if geocodingURL != "" {
			p.search.baseURL = geocodingURL
		}
		if forecastURL != "" {
			p.forecast.baseURL = forecastURL
		}
	}
}

// NewOpenMeteoProvider builds the provider. Geocoding and forecast each get
// their own circuit so one failing endpoint does not block the other.
func NewOpenMeteoProvider(cfg HTTPClientConfig, opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name: "openmeteo",
		search: &endpoint{
			provider: "openmeteo",
			name:     "geocoding",
			baseURL:  openMeteoGeocodingURL,
			client:   cfg.Client,
			circuit:  newCircuit("openmeteo-geocoding", cfg.Breaker),
		},
		forecast: &endpoint{
			provider: "openmeteo",
			name:     "forecast",
			baseURL:  openMeteoForecastURL,
			client:   cfg.Client,
			circuit:  newCircuit("openmeteo-forecast", cfg.Breaker),
		},
	}
	p.geocoder = &openMeteoGeocoder{search: p.search}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Current implements weather.Source. Open-Meteo needs no API key.
func (p *OpenMeteoProvider) Current(ctx context.Context, city, _ string) (weather.WeatherResult, error) {
	loc, err := p.geocoder.Geocode(ctx, city)
	if err != nil {
		return weather.WeatherResult{}, err
	}

	values := url.Values{}
	values.Set("latitude", formatCoord(loc.Latitude))
	values.Set("longitude", formatCoord(loc.Longitude))
	values.Set("current", openMeteoCurrentFields)
	values.Set("wind_speed_unit", "kmh")
	values.Set("timezone", "auto")

	var payload openMeteoForecastResponse
	if err := p.forecast.getJSON(ctx, values, &payload); err != nil {
		return weather.WeatherResult{}, err
	}

	cur := payload.Current
	if cur == nil {
		return weather.WeatherResult{}, weather.NotFound("Keine aktuellen Wetterdaten fuer " + loc.Name + " gefunden.")
	}

	return weather.WeatherResult{
		Location: loc,
		Current: weather.CurrentConditions{
			TemperatureC: cur.Temperature2m,
			FeelsLikeC:   cur.ApparentTemperature,
			WindSpeedKmh: cur.WindSpeed10m,
			Description:  weather.DescribeCode(cur.WeatherCode),
			ObservedAt:   cur.Time,
		},
	}, nil
}

type openMeteoGeocodingResponse struct {
	Results []struct {
		ID        int     `json:"id"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type openMeteoForecastResponse struct {
	Current *struct {
		Time                string  `json:"time"`
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

type openMeteoGeocoder struct {
	search *endpoint
}

// Geocode returns the first, highest-ranked geocoding match.
func (g *openMeteoGeocoder) Geocode(ctx context.Context, city string) (weather.Location, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("language", "de")
	values.Set("format", "json")

	var payload openMeteoGeocodingResponse
	if err := g.search.getJSON(ctx, values, &payload); err != nil {
		return weather.Location{}, err
	}

	if len(payload.Results) == 0 {
		return weather.Location{}, weather.NotFound("Stadt " + city + " wurde nicht gefunden.")
	}

	best := payload.Results[0]
	return weather.Location{
		Name:      best.Name,
		Country:   best.Country,
		Latitude:  best.Latitude,
		Longitude: best.Longitude,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
