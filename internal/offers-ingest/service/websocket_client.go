package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/odds"
	"github.com/radieske/master-bet-engine/internal/offers-ingest/publisher"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// WSClient consome o feed WebSocket de ofertas dos books e publica cada
// atualização recebida no tópico Kafka de offer_updates.
type WSClient struct {
	URL       string                    // URL do endpoint WebSocket do feed
	Log       *zap.Logger               // Logger estruturado
	Publisher *publisher.KafkaPublisher // Publisher Kafka para envio das ofertas
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar automaticamente com backoff.
func (c *WSClient) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		default:
			if err := c.connectAndListen(ctx); err != nil {
				c.Log.Warn("connection closed", zap.Error(err))
				time.Sleep(3 * time.Second) // Aguarda antes de tentar reconectar
			}
		}
	}
}

// connectAndListen estabelece a conexão WebSocket e processa mensagens recebidas.
// Cada oferta válida é publicada no Kafka; preço fora da faixa americana é descartado.
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to book feed WS", zap.String("url", c.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.Log.Error("read message failed", zap.Error(err))
			return err
		}

		var update events.OfferUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			continue
		}
		if !odds.Valid(update.Price) {
			c.Log.Warn("offer with invalid american price dropped",
				zap.String("event_id", update.EventID),
				zap.String("service", update.Service),
				zap.Int("price", update.Price),
			)
			continue
		}

		// Publica a atualização recebida no Kafka
		if err := c.Publisher.Publish(ctx, update); err != nil {
			c.Log.Error("failed to publish to Kafka", zap.Error(err))
		}
	}
}
