package httpapi

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

//go:embed index.html
var indexHTML []byte

// keepAlive is how often an idle event stream sends a comment line, which
// also detects clients that went away.
var keepAlive = 15 * time.Second

// Handler serves the weather UI and API on top of an Orchestrator.
type Handler struct {
	orch      *weather.Orchestrator
	formatter weather.TimeFormatter
	log       *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a new Handler.
func NewHandler(orch *weather.Orchestrator, formatter weather.TimeFormatter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		orch:      orch,
		formatter: formatter,
		log:       log.Named("http"),
		done:      make(chan struct{}),
	}
}

// Close ends all open event streams so the server can shut down.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(indexHTML)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "city-weather",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"cities":   h.orch.Cities(),
			"selected": h.orch.Selected(),
		})
	})

	v1.Get("/weather/state", func(c *fiber.Ctx) error {
		return c.JSON(h.stateResponse(h.orch.State()))
	})

	// Runs a query for the given city without touching the selection.
	v1.Post("/weather/query", func(c *fiber.Ctx) error {
		req, err := parseCityRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st := h.orch.Query(c.UserContext(), req.City)
		return c.Status(statusFor(st)).JSON(h.stateResponse(st))
	})

	// Changes the selection and queries it, like picking from the dropdown.
	v1.Post("/weather/select", func(c *fiber.Ctx) error {
		req, err := parseCityRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st := h.orch.Select(c.UserContext(), req.City)
		return c.Status(statusFor(st)).JSON(h.stateResponse(st))
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		st := h.orch.Refresh(c.UserContext())
		return c.Status(statusFor(st)).JSON(h.stateResponse(st))
	})

	v1.Get("/weather/events", h.streamEvents)
}

// cityRequest is the body of the query and select endpoints.
type cityRequest struct {
	City string `json:"city" form:"city" validate:"max=100"`
}

func parseCityRequest(c *fiber.Ctx) (cityRequest, error) {
	var req cityRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, err
		}
	}
	if req.City == "" {
		req.City = c.Query("city")
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

// StateResponse is the JSON form of a QueryState. View is set on success.
type StateResponse struct {
	weather.QueryState
	Loading bool          `json:"loading"`
	View    *weather.View `json:"view,omitempty"`
}

func (h *Handler) stateResponse(st weather.QueryState) StateResponse {
	resp := StateResponse{
		QueryState: st,
		Loading:    st.Status == weather.StatusLoading,
	}
	if st.Status == weather.StatusSuccess && st.Record != nil {
		v := weather.NewView(*st.Record, h.formatter)
		resp.View = &v
	}
	return resp
}

// statusFor maps a resolved state to an HTTP status code.
func statusFor(st weather.QueryState) int {
	if st.Status != weather.StatusFailure {
		return fiber.StatusOK
	}
	switch st.Message {
	case weather.MsgSelectCity:
		return fiber.StatusBadRequest
	case weather.MsgCityNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

// streamEvents pushes every state change as a server-sent event.
func (h *Handler) streamEvents(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	states, unsubscribe := h.orch.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		// Subscribe always has the current state pending.
		if st, ok := <-states; ok {
			if err := writeEvent(w, "state", h.stateResponse(st)); err != nil {
				h.log.Debug("event stream closed", zap.Error(err))
				return
			}
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				if err := writeEvent(w, "state", h.stateResponse(st)); err != nil {
					h.log.Debug("event stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	return w.Flush()
}
