package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-resolver/internal/store"
	"github.com/i474232898/weather-resolver/internal/weather"
)

type fakeResolver struct {
	failures map[string]error
}

func (f fakeResolver) SourceName() string { return "fake" }

func (f fakeResolver) Resolve(_ context.Context, city string) (weather.WeatherResult, error) {
	if err, ok := f.failures[city]; ok {
		return weather.WeatherResult{}, err
	}
	return weather.WeatherResult{Location: weather.Location{Name: city}}, nil
}

type recorder struct {
	mu      sync.Mutex
	results []store.ProbeResult
}

func (r *recorder) Save(result store.ProbeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func TestRunOnceRecordsEveryCity(t *testing.T) {
	res := fakeResolver{failures: map[string]error{
		"Atlantis": weather.NotFound("nope"),
		"Hamburg":  weather.UpstreamUnavailable("down", nil),
	}}
	rec := &recorder{}

	s := New([]string{"Berlin", "Atlantis", "Hamburg"}, time.Minute, time.Second, res, rec)
	s.RunOnce(context.Background())

	if len(rec.results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(rec.results))
	}

	outcomes := map[string]string{}
	for _, r := range rec.results {
		outcomes[r.City] = r.Outcome
		if r.Source != "fake" {
			t.Errorf("expected source name to be recorded, got %q", r.Source)
		}
		if r.CheckedAt.IsZero() || r.CheckedAt.Location() != time.UTC {
			t.Errorf("expected UTC check time, got %v", r.CheckedAt)
		}
	}

	want := map[string]string{"Berlin": "ok", "Atlantis": "not_found", "Hamburg": "upstream_unavailable"}
	for city, outcome := range want {
		if outcomes[city] != outcome {
			t.Errorf("%s: expected %s, got %s", city, outcome, outcomes[city])
		}
	}
}

func TestStartWithoutCitiesIsNoop(t *testing.T) {
	s := New(nil, time.Minute, 0, fakeResolver{}, &recorder{})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}

func TestStartRunsImmediately(t *testing.T) {
	rec := &recorder{}
	s := New([]string{"Berlin"}, time.Hour, time.Second, fakeResolver{}, rec)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec.mu.Lock()
		n := len(rec.results)
		rec.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected the first probe to run on start")
}
