package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-resolver/internal/common"
	"github.com/i474232898/weather-resolver/internal/metrics"
	"github.com/i474232898/weather-resolver/internal/weather"
)

// GoogleGeocoder resolves cities through the Google Geocoding API. The API
// only returns coordinates, so the location name echoes the query and the
// country is the configured region.
type GoogleGeocoder struct {
	country string
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// kelvins/geocoder reads its key from a package variable, so every
// GoogleGeocoder in the process shares one key.
var googleKey struct {
	mu  sync.Mutex
	key string
}

// NewGoogleGeocoder configures the package-level key of kelvins/geocoder.
// Building a second geocoder with a different key is an error, since it
// would silently redirect the first one.
func NewGoogleGeocoder(apiKey, country string) (*GoogleGeocoder, error) {
	googleKey.mu.Lock()
	defer googleKey.mu.Unlock()

	if googleKey.key != "" && googleKey.key != apiKey {
		return nil, fmt.Errorf("google geocoder already configured with a different api key")
	}
	googleKey.key = apiKey
	geocoder.ApiKey = apiKey

	return &GoogleGeocoder{
		country: country,
		lookup:  geocoder.Geocoding,
	}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city string) (weather.Location, error) {
	type result struct {
		loc geocoder.Location
		err error
	}

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		loc, err := g.lookup(geocoder.Address{City: city, Country: g.country})
		done <- result{loc: loc, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		metrics.RecordUpstream("google", "geocoding", "error", time.Since(start).Seconds())
		return weather.Location{}, weather.UpstreamUnavailable("google geocoding request failed", ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		if isZeroResults(res.err) {
			metrics.RecordUpstream("google", "geocoding", "ok", time.Since(start).Seconds())
			return weather.Location{}, weather.NotFound("Stadt " + city + " wurde nicht gefunden.")
		}
		metrics.RecordUpstream("google", "geocoding", "error", time.Since(start).Seconds())
		return weather.Location{}, weather.UpstreamUnavailable("google geocoding request failed", res.err)
	}
	metrics.RecordUpstream("google", "geocoding", "ok", time.Since(start).Seconds())

	// Unmapped statuses come back as a zero location without an error.
	if res.loc.Latitude == 0 && res.loc.Longitude == 0 {
		return weather.Location{}, weather.NotFound("Stadt " + city + " wurde nicht gefunden.")
	}

	return weather.Location{
		Name:      city,
		Country:   g.country,
		Latitude:  res.loc.Latitude,
		Longitude: res.loc.Longitude,
	}, nil
}

// isZeroResults reports whether err is Google's ZERO_RESULTS status rather
// than a transport or quota problem.
func isZeroResults(err error) bool {
	if err == nil {
		return false
	}
	return common.HasAny(strings.ToLower(err.Error()), "zero_results", "no results")
}
