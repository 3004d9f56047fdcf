// Package events publica eventos de pedido no RabbitMQ. Falhas de publicação
// são devolvidas ao chamador, que apenas as registra: a mensageria nunca
// interrompe o fluxo principal da requisição.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"brasero/internal/domain"
	"brasero/internal/pkg/logger"
)

// Publisher é o contrato usado pelos serviços de pedido e pagamento.
type Publisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Queues são as filas duráveis declaradas na inicialização (fila = routing key).
var Queues = []domain.OrderEventType{
	domain.EventOrderCreated,
	domain.EventOrderPaid,
	domain.EventOrderStatusChanged,
}

// NopPublisher descarta os eventos (RABBITMQ_URL vazio).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.OrderEvent) error { return nil }

// AMQPPublisher mantém uma conexão e um canal e os recria se caírem.
type AMQPPublisher struct {
	url    string
	logger logger.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher conecta e declara as filas.
func NewAMQPPublisher(url string, log logger.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, logger: log}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect deve ser chamado com mu travado.
func (p *AMQPPublisher) connect() error {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return fmt.Errorf("rabbitmq: dial: %w", err)
		}
		p.conn = conn
		p.ch = nil
	}

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("rabbitmq: channel: %w", err)
		}
		for _, q := range Queues {
			if _, err := ch.QueueDeclare(
				string(q), // name
				true,      // durable
				false,     // autoDelete
				false,     // exclusive
				false,     // noWait
				nil,       // args
			); err != nil {
				_ = ch.Close()
				return fmt.Errorf("rabbitmq: queue declare %s: %w", q, err)
			}
		}
		p.ch = ch
	}
	return nil
}

// Publish envia o evento como JSON persistente para a fila do seu tipo.
func (p *AMQPPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.OrderID + ":" + string(event.Type) + ":" + string(event.Status),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", string(event.Type), false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Evento publicado.", map[string]interface{}{"type": event.Type, "order_id": event.OrderID})
	return nil
}

// Close encerra canal e conexão.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
