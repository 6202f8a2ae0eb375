package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// HeaderCourseID carries the course id so subscribers can filter without
// decoding the payload.
const HeaderCourseID = "Course-Id"

// NATSPublisher publishes course events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url. The connection is named so it shows up
// in server monitoring.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("coursebuilder"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).Build()
	}

	logger.Info("NATS publisher connected", logfields.URL(url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

// Publish sends e and flushes so that the event has reached the server when
// Publish returns.
func (p *NATSPublisher) Publish(ctx context.Context, e CourseEvent) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(HeaderCourseID, e.CourseID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish course event").
			WithContext("course", e.CourseID).Build()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to flush course event").
			WithContext("course", e.CourseID).Build()
	}

	p.logger.Debug("Published course event", logfields.Course(e.CourseID), slog.String("type", e.Type))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
