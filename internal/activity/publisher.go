package activity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/babylog/internal/logbook"
)

// Logger is the subset of logging.Logger used here.
type Logger interface {
	Warn(msg string, args ...any)
}

// Broker is the publishing side of the MQTT client.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// TopicFunc returns the topic for a change of kind by ownerID.
type TopicFunc func(ownerID, kind, action string) string

// defaultQueueSize bounds the number of events waiting to be published.
const defaultQueueSize = 256

// Message is the JSON body published for each change.
type Message struct {
	Kind     string         `json:"kind"`
	Action   logbook.Action `json:"action"`
	OwnerID  string         `json:"owner_id"`
	RecordID string         `json:"record_id"`
	Record   any            `json:"record,omitempty"`
	At       time.Time      `json:"at"`
}

type outgoing struct {
	topic   string
	payload []byte
}

// Publisher sends every change to the broker from a background goroutine.
// When the queue is full the event is dropped and logged.
type Publisher struct {
	broker Broker
	topic  TopicFunc
	qos    byte
	logger Logger

	queue chan outgoing
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPublisher starts a Publisher. Call Close to drain the queue.
func NewPublisher(broker Broker, topic TopicFunc, qos byte, logger Logger) *Publisher {
	p := &Publisher{
		broker: broker,
		topic:  topic,
		qos:    qos,
		logger: logger,
		queue:  make(chan outgoing, defaultQueueSize),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Observe queues event for publishing.
func (p *Publisher) Observe(_ context.Context, event logbook.Event) {
	payload, err := json.Marshal(Message{
		Kind:     event.Kind,
		Action:   event.Action,
		OwnerID:  event.OwnerID,
		RecordID: event.RecordID,
		Record:   event.Record,
		At:       event.At,
	})
	if err != nil {
		p.logger.Warn("encoding activity event failed", "kind", event.Kind, "id", event.RecordID, "error", err)
		return
	}

	msg := outgoing{
		topic:   p.topic(event.OwnerID, event.Kind, string(event.Action)),
		payload: payload,
	}
	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("activity queue full, dropping event", "topic", msg.topic)
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for msg := range p.queue {
		if err := p.broker.Publish(msg.topic, msg.payload, p.qos, false); err != nil {
			p.logger.Warn("publishing activity event failed", "topic", msg.topic, "error", err)
		}
	}
}

// Close stops accepting events and waits for queued ones to be sent.
// Observe must not be called after Close.
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}
