package publisher

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
)

// PublisherMetrics is the subset of the metrics collector the publisher
// reports to.
type PublisherMetrics interface {
	TripPublishedInc()
	TripPublishErrInc()
}

// NATSPublisher broadcasts confirmed-trip events.
type NATSPublisher struct {
	nc      *nats.Conn
	logger  zerolog.Logger
	metrics PublisherMetrics
}

// NewNATSPublisher connects to NATS. metrics may be nil.
func NewNATSPublisher(url string, logger zerolog.Logger, m PublisherMetrics) (*NATSPublisher, error) {
	lg := logger.With().Str("component", "nats").Logger()
	nc, err := nats.Connect(url,
		nats.Name("commute-planner"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			lg.Warn().Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			lg.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			lg.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, logger: lg, metrics: m}, nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishTrip publishes a trip event on trips.completed.<modes>, where
// <modes> is the dash-joined mode set (e.g. "SUBWAY-WALK").
func (p *NATSPublisher) PublishTrip(ev domain.TripEvent) error {
	modes := make([]string, len(ev.Modes))
	for i, m := range ev.Modes {
		modes[i] = string(m)
	}
	subject := "trips.completed." + subjectToken(strings.Join(modes, "-"))

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.TripPublishErrInc()
		} else {
			p.metrics.TripPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
