package providers

import (
	"context"
	"net/url"

	"github.com/i474232898/weather-resolver/internal/weather"
)

const weatherAPICurrentURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPIProvider is a single-call source for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	current *endpoint
}

func NewWeatherAPIProvider(cfg HTTPClientConfig) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name: "weatherapi",
		current: &endpoint{
			provider: "weatherapi",
			name:     "current",
			baseURL:  weatherAPICurrentURL,
			client:   cfg.Client,
			circuit:  newCircuit("weatherapi", cfg.Breaker),
		},
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.current.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Current implements weather.Source. Units are already metric.
func (p *WeatherAPIProvider) Current(ctx context.Context, city, apiKey string) (weather.WeatherResult, error) {
	values := url.Values{}
	values.Set("key", apiKey)
	values.Set("q", city)
	values.Set("lang", "de")
	values.Set("aqi", "no")

	var payload weatherAPIResponse
	if err := p.current.getJSON(ctx, values, &payload); err != nil {
		return weather.WeatherResult{}, err
	}

	if payload.Location == nil || payload.Current == nil {
		return weather.WeatherResult{}, weather.NotFound("Keine Wetterdaten von WeatherAPI.com erhalten.")
	}

	loc, cur := payload.Location, payload.Current
	return weather.WeatherResult{
		Location: weather.Location{
			Name:      loc.Name,
			Country:   loc.Country,
			Latitude:  loc.Lat,
			Longitude: loc.Lon,
		},
		Current: weather.CurrentConditions{
			TemperatureC: cur.TempC,
			FeelsLikeC:   cur.FeelslikeC,
			WindSpeedKmh: cur.WindKph,
			Description:  cur.Condition.Text,
			ObservedAt:   cur.LastUpdated,
		},
	}, nil
}

type weatherAPIResponse struct {
	Location *struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Current *struct {
		TempC       float64 `json:"temp_c"`
		FeelslikeC  float64 `json:"feelslike_c"`
		WindKph     float64 `json:"wind_kph"`
		LastUpdated string  `json:"last_updated"`
		Condition   struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
}
