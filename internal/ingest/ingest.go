// Package ingest parses itinerary text published on a NATS subject.
//
// A message body is either a JSON request {"text": ..., "timezone": ...,
// "trip_id": ...} or the pasted text itself. When the message carries a reply
// subject the parse result is sent back as JSON, in the same shape as the
// HTTP parse endpoint.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/logging"
	"itinerary_parser/internal/service"
)

// QueueGroup load-balances messages across leg-api instances.
const QueueGroup = "leg-parsers"

// Reply is the JSON sent back to requesters.
type Reply struct {
	Format  leg.FormatTag `json:"format"`
	Draft   leg.Draft     `json:"draft"`
	Missing []string      `json:"missing"`
}

// Subscriber consumes parse requests from NATS.
type Subscriber struct {
	nc      *nats.Conn
	subject string
	parser  *service.Parser
	log     logging.Logger
	timeout time.Duration
}

// Connect dials the NATS server with reconnect logging.
func Connect(url string, log logging.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("leg-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DrainTimeout(10*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// NewSubscriber creates a subscriber for subject. Call Start to begin consuming.
func NewSubscriber(nc *nats.Conn, subject string, parser *service.Parser, log logging.Logger) *Subscriber {
	if log == nil {
		log = logging.Nop()
	}
	return &Subscriber{
		nc:      nc,
		subject: subject,
		parser:  parser,
		log:     log.With("subject", subject),
		timeout: 10 * time.Second,
	}
}

// Start subscribes in the shared queue group.
func (s *Subscriber) Start() error {
	if _, err := s.nc.QueueSubscribe(s.subject, QueueGroup, s.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.log.Info("nats ingest started", "queue", QueueGroup)
	return nil
}

// Shutdown drains the whole connection and waits until it is closed, so no
// handler is still running when it returns. If ctx expires first the
// connection is closed outright.
func (s *Subscriber) Shutdown(ctx context.Context) error {
	if s.nc == nil || s.nc.IsClosed() {
		return nil
	}
	closed := make(chan struct{})
	s.nc.SetClosedHandler(func(*nats.Conn) { close(closed) })
	if err := s.nc.Drain(); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return nil
		}
		s.nc.Close()
		return fmt.Errorf("drain nats: %w", err)
	}
	select {
	case <-closed:
		s.log.Info("nats ingest drained")
		return nil
	case <-ctx.Done():
		s.nc.Close()
		return fmt.Errorf("drain nats: %w", ctx.Err())
	}
}

func (s *Subscriber) handle(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	body, err := s.process(ctx, msg.Data)
	if err != nil {
		s.log.Error("encode reply failed", "error", err)
		return
	}
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(body); err != nil {
		s.log.Warn("reply failed", "reply", msg.Reply, "error", err)
	}
}

// process parses one message body and returns the encoded reply.
func (s *Subscriber) process(ctx context.Context, data []byte) ([]byte, error) {
	res := s.parser.Parse(ctx, "nats", decodeRequest(data))
	return json.Marshal(Reply{Format: res.Format, Draft: res.Draft, Missing: res.Missing})
}

// decodeRequest accepts a JSON request object; anything else is the pasted
// text itself.
func decodeRequest(data []byte) service.Request {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var req service.Request
		if err := json.Unmarshal(trimmed, &req); err == nil {
			return req
		}
	}
	return service.Request{Text: string(data)}
}
