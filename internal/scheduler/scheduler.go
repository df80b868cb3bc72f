package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-resolver/internal/metrics"
	"github.com/i474232898/weather-resolver/internal/store"
	"github.com/i474232898/weather-resolver/internal/weather"
)

// Resolver is the part of weather.Resolver the probe needs.
type Resolver interface {
	Resolve(ctx context.Context, city string) (weather.WeatherResult, error)
	SourceName() string
}

// Recorder keeps probe outcomes.
type Recorder interface {
	Save(result store.ProbeResult)
}

// Scheduler periodically resolves the configured probe cities and records
// whether the upstream answered.
type Scheduler struct {
	scheduler *gocron.Scheduler
	resolver  Resolver
	recorder  Recorder
	cities    []string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds each individual probe.
func New(cities []string, interval, timeout time.Duration, resolver Resolver, recorder Recorder) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: s,
		resolver:  resolver,
		recorder:  recorder,
		cities:    cities,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no probe cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every city concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log.Println("scheduler: running upstream probe job")

	var wg sync.WaitGroup
	for _, city := range s.cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			s.recorder.Save(s.probe(ctx, city))
		}(city)
	}
	wg.Wait()

	log.Println("scheduler: completed upstream probe job")
}

func (s *Scheduler) probe(ctx context.Context, city string) store.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	_, err := s.resolver.Resolve(ctx, city)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = weather.KindOf(err).String()
		log.Printf("scheduler: probe failed for %s: %v", city, err)
	}
	metrics.ProbeTotal.WithLabelValues(outcome).Inc()

	return store.ProbeResult{
		City:      city,
		Source:    s.resolver.SourceName(),
		Outcome:   outcome,
		LatencyMs: elapsed.Milliseconds(),
		CheckedAt: start.UTC(),
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
