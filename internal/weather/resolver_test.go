package weather

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSource struct {
	calls  int
	apiKey string
	result WeatherResult
	err    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Current(_ context.Context, city, apiKey string) (WeatherResult, error) {
	f.calls++
	f.apiKey = apiKey
	if f.err != nil {
		return WeatherResult{}, f.err
	}
	res := f.result
	if res.Location.Name == "" {
		res.Location.Name = city
	}
	return res, nil
}

func TestResolveRejectsBlankInputInBothModes(t *testing.T) {
	for _, synthetic := range []bool{false, true} {
		for _, input := range []string{"", " ", "\t\n", "   "} {
			src := &fakeSource{}
			r := NewResolver(src, StaticSettings(Settings{Synthetic: synthetic}))

			_, err := r.Resolve(context.Background(), input)
			if KindOf(err) != KindInvalidInput {
				t.Fatalf("synthetic=%v input=%q: expected invalid input, got %v", synthetic, input, err)
			}
			if src.calls != 0 {
				t.Fatalf("synthetic=%v input=%q: expected no source calls, got %d", synthetic, input, src.calls)
			}
		}
	}
}

func TestResolveSyntheticSkipsSource(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	r := NewResolver(src, StaticSettings(Settings{Synthetic: true}), WithClock(func() time.Time { return fixed }))

	for _, input := range []string{"Berlin", "  Hamburg ", "münchen", "Köln am Rhein"} {
		res, err := r.Resolve(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if want := strings.TrimSpace(input); res.Location.Name != want {
			t.Fatalf("expected name %q, got %q", want, res.Location.Name)
		}
		if res.Location.Country != "Testland" || res.Location.Latitude != 0 || res.Location.Longitude != 0 {
			t.Fatalf("unexpected synthetic location %+v", res.Location)
		}
		if res.Current.ObservedAt != "2024-01-01T12:00:00.000Z" {
			t.Fatalf("unexpected observedAt %q", res.Current.ObservedAt)
		}
	}
	if src.calls != 0 {
		t.Fatalf("synthetic mode must not call the source, got %d calls", src.calls)
	}
}

func TestResolveSyntheticIsDeterministic(t *testing.T) {
	r := NewResolver(nil, StaticSettings(Settings{Synthetic: true}))

	res, err := r.Resolve(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 'b' is 98, 98 % 10 = 8
	want := CurrentConditions{
		TemperatureC: 20,
		FeelsLikeC:   19,
		WindSpeedKmh: 8,
		Description:  "Beispielwetter",
		ObservedAt:   res.Current.ObservedAt,
	}
	if res.Current != want {
		t.Fatalf("expected %+v, got %+v", want, res.Current)
	}

	again, _ := r.Resolve(context.Background(), "berlin")
	if again.Current.TemperatureC != res.Current.TemperatureC {
		t.Fatalf("temperature should only depend on the lower-cased name")
	}
}

func TestResolveReadsSettingsPerCall(t *testing.T) {
	src := &fakeSource{}
	synthetic := true
	keys := []string{"first", "second"}
	calls := 0
	r := NewResolver(src, func() Settings {
		s := Settings{Synthetic: synthetic, APIKey: keys[calls%2]}
		calls++
		return s
	})

	if _, err := r.Resolve(context.Background(), "Berlin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected synthetic first call")
	}

	synthetic = false
	if _, err := r.Resolve(context.Background(), "Berlin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected live second call, got %d source calls", src.calls)
	}
	if src.apiKey != "second" {
		t.Fatalf("expected api key of the current call, got %q", src.apiKey)
	}
}

func TestResolveLivePassesTrimmedCity(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, StaticSettings(Settings{}))

	res, err := r.Resolve(context.Background(), "  Berlin  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Location.Name != "Berlin" {
		t.Fatalf("expected trimmed city, got %q", res.Location.Name)
	}
}

func TestResolvePropagatesClassifiedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NotFound("none"), KindNotFound},
		{UpstreamUnavailable("down", errors.New("refused")), KindUpstreamUnavailable},
		{errors.New("something odd"), KindUnclassified},
	}
	for _, tc := range cases {
		r := NewResolver(&fakeSource{err: tc.err}, StaticSettings(Settings{}))

		res, err := r.Resolve(context.Background(), "Berlin")
		if err == nil {
			t.Fatalf("expected error for %v", tc.err)
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if e.Kind != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, e.Kind)
		}
		if res != (WeatherResult{}) {
			t.Fatalf("expected zero result on failure, got %+v", res)
		}
	}
}

func TestResolveWithoutSourceIsUnclassified(t *testing.T) {
	r := NewResolver(nil, StaticSettings(Settings{}))

	_, err := r.Resolve(context.Background(), "Berlin")
	if KindOf(err) != KindUnclassified {
		t.Fatalf("expected unclassified, got %v", err)
	}
}
