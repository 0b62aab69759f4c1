package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Mutation event types.
const (
	OpCreate  = "create"
	OpReplace = "replace"
	OpDelete  = "delete"
)

// Event describes one successful mutation of the store.
type Event struct {
	Op        string `json:"op"`
	Key       string `json:"key"`
	TxnID     string `json:"txn_id"`
	Timestamp int64  `json:"timestamp"`
}

// Emitter publishes mutation events to NATS. Emitting is best-effort; a
// failed publish never fails the request that caused it.
type Emitter struct {
	conn    *nats.Conn
	subject string
}

func NewEmitter(natsURL, subject string) (*Emitter, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Emitter{
		conn:    conn,
		subject: subject,
	}, nil
}

func (e *Emitter) Emit(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.conn.Publish(e.subject, data)
}

func (e *Emitter) Close() {
	if e.conn != nil {
		e.conn.Close()
	}
}
