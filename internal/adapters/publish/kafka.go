package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const defaultTopic = "premarket.arbs"

// ArbMessage es el payload publicado por cada oportunidad de arbitraje.
type ArbMessage struct {
	CycleID      string    `json:"cycle_id"`
	DetectedAt   time.Time `json:"detected_at"`
	Project      string    `json:"project"`
	Key          string    `json:"key"`
	KeyKind      string    `json:"key_kind"`
	LimSlug      string    `json:"lim_slug"`
	PolySlug     string    `json:"poly_slug"`
	LimYes       float64   `json:"lim_yes"`
	PolyNo       float64   `json:"poly_no"`
	CombinedCost float64   `json:"combined_cost"`
	EdgePct      float64   `json:"edge_pct"`

	// Reparto para Budget USDC, en céntimos. Vacío si Budget ≤ 0.
	Budget    float64 `json:"budget,omitempty"`
	LimSpend  string  `json:"lim_spend,omitempty"`
	PolySpend string  `json:"poly_spend,omitempty"`
	Profit    string  `json:"profit,omitempty"`
}

// KafkaPublisher implementa ports.Publisher con un kafka.Writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	budget float64
}

// NewKafkaPublisher crea un writer hacia topic. budget se usa para
// incluir el reparto de cada oportunidad en el mensaje.
func NewKafkaPublisher(brokers []string, topic string, budget float64) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("publish.NewKafkaPublisher: no brokers configured")
	}
	if topic == "" {
		topic = defaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, budget: budget}, nil
}

// PublishArbs escribe un mensaje por oportunidad. Sin oportunidades no escribe nada.
func (p *KafkaPublisher) PublishArbs(ctx context.Context, cycle domain.Cycle) error {
	msgs, err := BuildMessages(cycle, p.budget)
	if err != nil {
		return fmt.Errorf("publish.PublishArbs: %w", err)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish.PublishArbs: write %d messages: %w", len(msgs), err)
	}
	slog.Debug("arbs published", "cycle", cycle.ID, "messages", len(msgs), "topic", p.writer.Topic)
	return nil
}

// Close vacía el buffer del writer y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// BuildMessages convierte las oportunidades del ciclo en mensajes Kafka.
// La clave es proyecto + slug de Limitless para que el mismo mercado caiga
// siempre en la misma partición.
func BuildMessages(cycle domain.Cycle, budget float64) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(cycle.Evaluation.Arbs))
	for _, arb := range cycle.Evaluation.Arbs {
		m := ArbMessage{
			CycleID:      cycle.ID,
			DetectedAt:   cycle.RunAt.UTC(),
			Project:      arb.Pair.Project,
			Key:          arb.Pair.Key().String(),
			LimSlug:      arb.Pair.Lim.Slug,
			PolySlug:     arb.Pair.Poly.Slug,
			LimYes:       arb.Pair.Lim.YesPrice,
			PolyNo:       arb.Pair.Poly.NoPrice(),
			CombinedCost: arb.CombinedCost,
			EdgePct:      arb.EdgePct,
		}
		if k := arb.Pair.Key(); k != nil {
			m.KeyKind = k.Kind.String()
		}
		if budget > 0 {
			split := arb.Split(budget).Cents()
			m.Budget = budget
			m.LimSpend = split.LimSpend.StringFixed(2)
			m.PolySpend = split.PolySpend.StringFixed(2)
			m.Profit = split.Profit.StringFixed(2)
		}

		payload, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal arb %s: %w", m.LimSlug, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(m.Project + ":" + m.LimSlug),
			Value: payload,
			Time:  cycle.RunAt,
		})
	}
	return msgs, nil
}
