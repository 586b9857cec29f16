package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

func (p *KafkaPublisher) PublishPlanCommitted(ctx context.Context, e events.PlanCommitted) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.PlanID), Value: b})
}
