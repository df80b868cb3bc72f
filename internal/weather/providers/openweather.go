package providers

import (
	"context"
	"net/url"
	"time"

	"github.com/i474232898/weather-resolver/internal/weather"
)

const openWeatherCurrentURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider is a single-call source for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	current *endpoint
}

func NewOpenWeatherProvider(cfg HTTPClientConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name: "openweathermap",
		current: &endpoint{
			provider: "openweathermap",
			name:     "current",
			baseURL:  openWeatherCurrentURL,
			client:   cfg.Client,
			circuit:  newCircuit("openweather", cfg.Breaker),
		},
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.current.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current implements weather.Source. Wind arrives in m/s with units=metric.
func (p *OpenWeatherProvider) Current(ctx context.Context, city, apiKey string) (weather.WeatherResult, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", apiKey)
	values.Set("units", "metric")
	values.Set("lang", "de")

	var payload openWeatherResponse
	if err := p.current.getJSON(ctx, values, &payload); err != nil {
		return weather.WeatherResult{}, err
	}

	if payload.Coord == nil || payload.Main == nil {
		return weather.WeatherResult{}, weather.NotFound("Keine Wetterdaten von OpenWeatherMap erhalten.")
	}

	description := weather.DescriptionUnavailable
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		description = payload.Weather[0].Description
	}

	var observed string
	if payload.Dt > 0 {
		observed = time.Unix(payload.Dt, 0).UTC().Format(time.RFC3339)
	}

	return weather.WeatherResult{
		Location: weather.Location{
			Name:      payload.Name,
			Country:   payload.Sys.Country,
			Latitude:  payload.Coord.Lat,
			Longitude: payload.Coord.Lon,
		},
		Current: weather.CurrentConditions{
			TemperatureC: payload.Main.Temp,
			FeelsLikeC:   payload.Main.FeelsLike,
			WindSpeedKmh: msToKmh(payload.Wind.Speed),
			Description:  description,
			ObservedAt:   observed,
		},
	}, nil
}

func msToKmh(v float64) float64 {
	return v * 3.6
}

type openWeatherResponse struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}
