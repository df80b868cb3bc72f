package weather

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/i474232898/weather-resolver/internal/metrics"
)

const (
	msgEmptyCity = "Bitte einen Stadtnamen angeben."

	syntheticCountry     = "Testland"
	syntheticDescription = "Beispielwetter"
	syntheticWindKmh     = 8

	// ISO 8601 with millisecond precision in UTC.
	observedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Resolver turns a free-text city name into a WeatherResult using the
// configured Source, or synthesizes one when synthetic mode is active.
type Resolver struct {
	source   Source
	settings SettingsFunc
	now      func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source used for synthetic observations.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a Resolver. settings is evaluated on every call.
func NewResolver(source Source, settings SettingsFunc, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SourceName returns the name of the configured upstream, or "none".
func (r *Resolver) SourceName() string {
	if r.source == nil {
		return "none"
	}
	return r.source.Name()
}

// Resolve returns the current weather for city. Every failure is an *Error.
func (r *Resolver) Resolve(ctx context.Context, city string) (WeatherResult, error) {
	name := strings.TrimSpace(city)
	if name == "" {
		metrics.RecordResolve("none", KindInvalidInput.String())
		return WeatherResult{}, InvalidInput(msgEmptyCity)
	}

	var settings Settings
	if r.settings != nil {
		settings = r.settings()
	}

	if settings.Synthetic {
		metrics.RecordResolve("synthetic", "ok")
		return r.synthesize(name), nil
	}

	res, err := r.resolveLive(ctx, name, settings.APIKey)
	if err != nil {
		e := Classify(err)
		if e.Kind == KindUnclassified || e.Kind == KindUpstreamUnavailable {
			log.Printf("ERROR: resolve %q via %s failed: %v", name, r.SourceName(), e)
		}
		metrics.RecordResolve("live", e.Kind.String())
		return WeatherResult{}, e
	}

	metrics.RecordResolve("live", "ok")
	return res, nil
}

func (r *Resolver) resolveLive(ctx context.Context, name, apiKey string) (WeatherResult, error) {
	if r.source == nil {
		return WeatherResult{}, errors.New("no weather source configured")
	}
	log.Printf("DEBUG: resolving %q via %s", name, r.source.Name())
	return r.source.Current(ctx, name, apiKey)
}

// synthesize derives a result from the city name alone.
func (r *Resolver) synthesize(name string) WeatherResult {
	first, _ := utf8.DecodeRuneInString(strings.ToLower(name))
	temp := float64(12 + int(first)%10)

	return WeatherResult{
		Location: Location{
			Name:    name,
			Country: syntheticCountry,
		},
		Current: CurrentConditions{
			TemperatureC: temp,
			FeelsLikeC:   temp - 1,
			WindSpeedKmh: syntheticWindKmh,
			Description:  syntheticDescription,
			ObservedAt:   r.now().UTC().Format(observedAtLayout),
		},
	}
}
