// Package amqp publica en RabbitMQ un evento por cada reporte recalculado del dashboard.
package amqp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

var _ analytics.ReportListener = (*ReportPublisher)(nil)

// ReportPublisher implementa analytics.ReportListener sobre un exchange topic.
type ReportPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	log        *logger.Logger

	mu sync.Mutex // amqp091.Channel no admite publicaciones concurrentes
}

// NewReportPublisher conecta con el broker y declara el exchange (topic, durable).
func NewReportPublisher(url, exchange, routingKey string, log *logger.Logger) (*ReportPublisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &ReportPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log.Component("amqp"),
	}, nil
}

// ReportPublished publica el resumen del reporte. La routing key lleva la escuela
// como sufijo ("report.recomputed.yale") para que los consumidores puedan filtrar.
func (p *ReportPublisher) ReportPublished(ctx context.Context, r *analytics.Report) error {
	body, err := NewReportRecomputedMessage(r).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := RoutingKey(p.routingKey, r.School)

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    r.Revision,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Debug().
		Str("revision", r.Revision).
		Str("exchange", p.exchange).
		Str("routing_key", key).
		Msg("evento de reporte publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *ReportPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// RoutingKey agrega la escuela normalizada como última palabra de la clave:
// "All Schools" → "report.recomputed.all-schools".
func RoutingKey(base, school string) string {
	word := strings.ToLower(strings.Join(strings.Fields(school), "-"))
	word = strings.ReplaceAll(word, ".", "-")
	if word == "" {
		return base
	}
	return base + "." + word
}
