package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/i474232898/weather-resolver/internal/weather"
)

func weatherAPIServer(t *testing.T, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key=test-key, got %s", r.URL.Query().Get("key"))
		}
		if r.URL.Query().Get("q") != "Berlin" {
			t.Errorf("expected q=Berlin, got %s", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherAPIRoundTrip(t *testing.T) {
	var calls atomic.Int32
	srv := weatherAPIServer(t, `{
		"location":{"name":"Berlin","country":"Deutschland","lat":52.52,"lon":13.41},
		"current":{"temp_c":12.3,"feelslike_c":10.1,"wind_kph":14.3,
			"condition":{"text":"Teilweise bewoelkt"},"last_updated":"2024-01-01T12:00:00Z"}
	}`, &calls)

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}).WithBaseURL(srv.URL)

	res, err := p.Current(context.Background(), "Berlin", "test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := weather.WeatherResult{
		Location: weather.Location{Name: "Berlin", Country: "Deutschland", Latitude: 52.52, Longitude: 13.41},
		Current: weather.CurrentConditions{
			TemperatureC: 12.3,
			FeelsLikeC:   10.1,
			WindSpeedKmh: 14.3,
			Description:  "Teilweise bewoelkt",
			ObservedAt:   "2024-01-01T12:00:00Z",
		},
	}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one outbound call, got %d", calls.Load())
	}
}

func TestWeatherAPIMissingSubObjects(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"location":{"name":"Berlin","country":"Deutschland","lat":52.52,"lon":13.41}}`,
		`{"current":{"temp_c":12.3}}`,
	}
	for _, body := range bodies {
		var calls atomic.Int32
		srv := weatherAPIServer(t, body, &calls)
		p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}).WithBaseURL(srv.URL)

		_, err := p.Current(context.Background(), "Berlin", "test-key")
		if weather.KindOf(err) != weather.KindNotFound {
			t.Fatalf("body %s: expected not found, got %v", body, err)
		}
	}
}

func TestWeatherAPINon2xxIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":2008,"message":"API key has been disabled."}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}).WithBaseURL(srv.URL)
	_, err := p.Current(context.Background(), "Berlin", "test-key")
	if weather.KindOf(err) != weather.KindUpstreamUnavailable {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}

func TestWeatherAPIClientErrorsDoNotBlockLaterCities(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") != "Berlin" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
			return
		}
		w.Write([]byte(`{
			"location":{"name":"Berlin","country":"Deutschland","lat":52.52,"lon":13.41},
			"current":{"temp_c":12.3,"condition":{"text":"Sonnig"}}
		}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client(), Breaker: DefaultBreakerConfig}).WithBaseURL(srv.URL)

	attempts := int(DefaultBreakerConfig.MaxFailures) * 2
	for i := 0; i < attempts; i++ {
		if _, err := p.Current(context.Background(), "Xyzzy", "test-key"); err == nil {
			t.Fatalf("expected an error for an unknown city on attempt %d", i)
		}
	}

	res, err := p.Current(context.Background(), "Berlin", "test-key")
	if err != nil {
		t.Fatalf("valid city failed after client errors: %v", err)
	}
	if res.Location.Name != "Berlin" {
		t.Fatalf("expected Berlin, got %+v", res.Location)
	}
	if int(calls.Load()) != attempts+1 {
		t.Fatalf("expected every call to reach the upstream, got %d of %d", calls.Load(), attempts+1)
	}
}
