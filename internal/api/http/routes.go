package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-resolver/internal/store"
	"github.com/i474232898/weather-resolver/internal/weather"
)

const (
	msgMissingCity = "Parameter 'city' wird benoetigt."
	msgCityTooLong = "Der Stadtname ist zu lang."
	msgInternal    = "Interner Serverfehler"
)

var validate = validator.New()

// Resolver is what the weather route needs from weather.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, city string) (weather.WeatherResult, error)
	SourceName() string
}

// ProbeReader exposes recorded upstream probes.
type ProbeReader interface {
	LatestAll() []store.ProbeResult
	History(city string, from, to time.Time) ([]store.ProbeResult, error)
}

// Deps are the collaborators of the HTTP routes. Probes may be nil.
type Deps struct {
	Resolver Resolver
	Probes   ProbeReader
	// Timeout bounds one resolve including upstream calls; 0 means none.
	Timeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		probes := []store.ProbeResult{}
		if deps.Probes != nil {
			probes = deps.Probes.LatestAll()
			for _, p := range probes {
				if !p.OK() {
					status = "degraded"
					break
				}
			}
		}

		return c.JSON(fiber.Map{
			"status":   status,
			"service":  "weather-resolver",
			"provider": deps.Resolver.SourceName(),
			"probes":   probes,
		})
	})

	api.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		if deps.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deps.Timeout)
			defer cancel()
		}

		result, err := deps.Resolver.Resolve(ctx, q.City)
		if err != nil {
			e := weather.Classify(err)
			return fiber.NewError(e.StatusCode(), e.PublicMessage())
		}

		return c.JSON(result)
	})

	api.Get("/probes", func(c *fiber.Ctx) error {
		if deps.Probes == nil {
			return fiber.NewError(fiber.StatusNotFound, "Keine Pruefergebnisse vorhanden.")
		}

		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := deps.Probes.History(req.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Keine Pruefergebnisse im angefragten Zeitraum.")
			}
			return fiber.NewError(fiber.StatusInternalServerError, msgInternal)
		}

		return c.JSON(fiber.Map{
			"city":    req.City,
			"from":    req.From,
			"to":      req.To,
			"results": results,
		})
	})
}

// ErrorHandler renders every error as {"message": ...}. Errors that are not
// *fiber.Error are logged and hidden behind a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("ERROR: request %v %s %s failed: %v", c.Locals(RequestIDKey), c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}

// RequestIDKey is where the requestid middleware stores the id.
const RequestIDKey = "requestid"

// cityQuery holds the query parameters of the weather endpoint.
// Blank names are rejected by the resolver, not here.
type cityQuery struct {
	City string `validate:"max=200"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	var q cityQuery

	if !c.Context().QueryArgs().Has("city") {
		return q, fiber.NewError(fiber.StatusBadRequest, msgMissingCity)
	}
	q.City = c.Query("city")

	if err := validate.Struct(q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, msgCityTooLong)
	}

	return q, nil
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
