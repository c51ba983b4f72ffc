package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const subjectImportCompleted = "product.import.completed"

// ImportCompletedEvent is published after every import run, including
// validate-only runs, so downstream consumers (inventory sync, dashboards)
// can react without polling.
type ImportCompletedEvent struct {
	ImportID     string    `json:"import_id"`
	Format       string    `json:"format"`
	ValidateOnly bool      `json:"validate_only"`
	Total        int       `json:"total"`
	Valid        int       `json:"valid"`
	Invalid      int       `json:"invalid"`
	Duplicates   int       `json:"duplicates"`
	Inserted     int       `json:"inserted"`
	Skipped      int       `json:"skipped"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Publisher publishes import lifecycle events to NATS. A nil Publisher is
// valid and publishes nothing, so event wiring stays optional in
// deployments without a broker.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

func NewPublisher(natsURL string, logger *logrus.Entry) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("products-import-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, logger: logger}, nil
}

// PublishImportCompleted publishes asynchronously; a slow or unavailable
// broker never delays the HTTP response.
func (p *Publisher) PublishImportCompleted(event ImportCompletedEvent) {
	if p == nil || p.conn == nil {
		return
	}
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal import.completed event")
			return
		}
		if err := p.conn.Publish(subjectImportCompleted, data); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"subject":   subjectImportCompleted,
				"import_id": event.ImportID,
			}).Error("Failed to publish import.completed event")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"subject":   subjectImportCompleted,
			"import_id": event.ImportID,
			"total":     event.Total,
			"inserted":  event.Inserted,
		}).Info("Published import.completed event")
	}()
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Drain()
}
