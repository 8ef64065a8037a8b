package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	headerSource = "src"
	headerTag    = "tag"
	contentType  = "application/x-bigadd-varint"
)

// Transport is one rank's endpoint on the broker.
type Transport struct {
	cfg    Config
	conn   *amqp.Connection
	pubMu  sync.Mutex
	pub    *amqp.Channel
	sub    *amqp.Channel
	box    *mpi.Postbox
	logger logging.Logger
	done   chan struct{}
	once   sync.Once
}

var _ mpi.Transport = (*Transport)(nil)

// Dial connects to the broker, declares the queue of every rank in the
// session, and starts consuming this rank's queue.
//
// Parameters:
//   - cfg: The rank's broker settings.
//   - logger: Receives connection events.
//
// Returns:
//   - *Transport: The connected endpoint.
//   - error: An error if the broker cannot be reached or set up.
func Dial(cfg Config, logger logging.Logger) (*Transport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	conn, err := waitForConnection(cfg)
	if err != nil {
		return nil, err
	}
	t := &Transport{
		cfg:    cfg,
		conn:   conn,
		box:    mpi.NewPostbox(),
		logger: logger,
		done:   make(chan struct{}),
	}
	if err := t.setup(); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug("connected to broker",
		logging.String("queue", QueueName(cfg.Session, cfg.Rank)),
		logging.Int("rank", cfg.Rank),
		logging.Int("size", cfg.Size))
	return t, nil
}

func (t *Transport) setup() error {
	var err error
	if t.pub, err = t.conn.Channel(); err != nil {
		return fmt.Errorf("failed to open publish channel: %w", err)
	}
	if t.sub, err = t.conn.Channel(); err != nil {
		return fmt.Errorf("failed to open consume channel: %w", err)
	}
	for r := 0; r < t.cfg.Size; r++ {
		if _, err := t.pub.QueueDeclare(QueueName(t.cfg.Session, r), false, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue for rank %d: %w", r, err)
		}
	}
	deliveries, err := t.sub.Consume(
		QueueName(t.cfg.Session, t.cfg.Rank),
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	closed := t.conn.NotifyClose(make(chan *amqp.Error, 1))
	go t.consume(deliveries, closed)
	return nil
}

func (t *Transport) consume(deliveries <-chan amqp.Delivery, closed <-chan *amqp.Error) {
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				t.box.Fail(mpi.ErrClosed)
				return
			}
			if err := route(t.box, d); err != nil {
				t.logger.Error("dropping malformed message", err, logging.Int("rank", t.cfg.Rank))
				t.box.Fail(err)
			}
		case amqpErr := <-closed:
			if amqpErr != nil {
				t.box.Fail(fmt.Errorf("%w: %v", mpi.ErrClosed, amqpErr))
			} else {
				t.box.Fail(mpi.ErrClosed)
			}
			return
		case <-t.done:
			t.box.Fail(mpi.ErrClosed)
			return
		}
	}
}

// route decodes a delivery and files it in box under its envelope.
func route(box *mpi.Postbox, d amqp.Delivery) error {
	src, err := headerInt(d.Headers, headerSource)
	if err != nil {
		return err
	}
	tag, err := headerInt(d.Headers, headerTag)
	if err != nil {
		return err
	}
	data, err := decode(d.Body)
	if err != nil {
		return fmt.Errorf("message from rank %d tag %d: %w", src, tag, err)
	}
	box.Put(src, tag, data)
	return nil
}

func headerInt(h amqp.Table, key string) (int, error) {
	switch v := h[key].(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("missing %q header", key)
	default:
		return 0, fmt.Errorf("header %q has type %T", key, v)
	}
}

func publishing(src, tag int, data []int) amqp.Publishing {
	return amqp.Publishing{
		ContentType: contentType,
		Headers: amqp.Table{
			headerSource: int32(src),
			headerTag:    int32(tag),
		},
		Body: encode(data),
	}
}

// Rank returns this endpoint's rank.
func (t *Transport) Rank() int { return t.cfg.Rank }

// Size returns the number of ranks in the session.
func (t *Transport) Size() int { return t.cfg.Size }

// Send publishes data to dst's queue.
func (t *Transport) Send(ctx context.Context, dst, tag int, data []int) error {
	if dst < 0 || dst >= t.cfg.Size {
		return fmt.Errorf("no rank %d", dst)
	}
	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	err := t.pub.PublishWithContext(ctx,
		"", // default exchange
		QueueName(t.cfg.Session, dst),
		false, // mandatory
		false, // immediate
		publishing(t.cfg.Rank, tag, data),
	)
	if errors.Is(err, amqp.ErrClosed) {
		return mpi.ErrClosed
	}
	return err
}

// Recv waits for the oldest message from src with the given tag.
func (t *Transport) Recv(ctx context.Context, src, tag int) ([]int, error) {
	return t.box.Take(ctx, src, tag)
}

// Close stops consuming, deletes this rank's queue and closes the connection.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		if _, delErr := t.pub.QueueDelete(QueueName(t.cfg.Session, t.cfg.Rank), false, false, false); delErr != nil {
			t.logger.Debug("queue delete failed", logging.Err(delErr))
		}
		err = t.conn.Close()
	})
	return err
}
