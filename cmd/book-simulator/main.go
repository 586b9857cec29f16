package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/shared/config"
	"github.com/radieske/master-bet-engine/internal/shared/logger"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"

	bdto "github.com/radieske/master-bet-engine/internal/book-simulator/dto"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Books simulados que publicam ofertas no feed
	bookServices = []string{"betway", "pinnacle", "bet365"}

	// Catálogo fixo de mercados simulados para geração de ofertas
	offerCatalog = []events.OfferUpdate{
		{EventID: "NFL_001", Sport: "football", HomeTeam: "Chiefs", AwayTeam: "Bills", Market: "spread", Selection: "Chiefs", Line: ptr(-7.5)},
		{EventID: "NFL_001", Sport: "football", HomeTeam: "Chiefs", AwayTeam: "Bills", Market: "total", Selection: "over", Line: ptr(48.5)},
		{EventID: "NFL_002", Sport: "football", HomeTeam: "Eagles", AwayTeam: "Cowboys", Market: "moneyline", Selection: "Eagles"},
		{EventID: "NBA_001", Sport: "basketball", HomeTeam: "Celtics", AwayTeam: "Lakers", Market: "spread", Selection: "Celtics", Line: ptr(-4.5)},
		{EventID: "NBA_001", Sport: "basketball", HomeTeam: "Celtics", AwayTeam: "Lakers", Market: "total", Selection: "under", Line: ptr(221.5)},
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "book_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "book_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
	placedBets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "book_placements_total",
		Help: "Colocações recebidas por resultado",
	}, []string{"outcome"})
)

// Representa uma conexão de cliente WebSocket
// id: identificador único da conexão
// conn: ponteiro para a conexão WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// Estrutura responsável por gerenciar os clientes conectados via WebSocket
// e realizar broadcast de mensagens para todos eles.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

// Cria uma nova instância de hub para gerenciar conexões
func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

// Adiciona um novo cliente ao hub e incrementa a métrica de conexões
func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

// Remove um cliente do hub e decrementa a métrica de conexões
func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Envia uma mensagem para todos os clientes conectados
func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// Server estrutura principal do serviço
type server struct {
	log *zap.Logger
}

func newServer(log *zap.Logger) *server { return &server{log: log} }

// Handler para colocar aposta (mock): aceita ~80% e recusa o resto com
// motivos realistas de book
func (s *server) placeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req bdto.PlaceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.StakeCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	resp := bdto.PlaceResp{
		Success:     true,
		PlacedCents: req.StakeCents,
		TicketRef:   "BOOK-" + safePrefix(req.AccountID, 8) + "-" + fmt.Sprintf("%d", time.Now().UnixNano()%1e6),
	}
	switch roll := rand.Intn(100); {
	case roll < 80:
		// aceito integral
	case roll < 90:
		resp.Success = false
		resp.PlacedCents = 0
		resp.Reason = bdto.ReasonPriceMoved
	case roll < 95:
		resp.Success = false
		resp.PlacedCents = 0
		resp.Reason = bdto.ReasonAccountSuspended
	default:
		resp.Success = false
		resp.PlacedCents = 0
		resp.Reason = bdto.ReasonStakeLimited
	}

	outcome := "accepted"
	if !resp.Success {
		outcome = "rejected"
	}
	placedBets.WithLabelValues(outcome).Inc()
	s.log.Info("placement handled",
		zap.String("account_id", req.AccountID),
		zap.String("event_id", req.EventID),
		zap.Int64("stake_cents", req.StakeCents),
		zap.String("outcome", outcome),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// evita panic se o AccountID for menor que n caracteres
func safePrefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// gera um preço americano válido dentro de uma faixa de cents da referência
func rndPrice(ref int) int {
	cents := rand.Intn(41) - 20 // -20..+20 cents da referência
	base := refCents(ref) + cents
	if base >= 0 {
		return base + 100
	}
	return base - 100
}

func refCents(price int) int {
	if price > 0 {
		return price - 100
	}
	return price + 100
}

// jitter de linha em passos de meio ponto
func rndLine(base float64) float64 {
	return base + float64(rand.Intn(3)-1)*0.5
}

func ptr(f float64) *float64 { return &f }

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	rand.Seed(time.Now().UnixNano())

	prometheus.MustRegister(wsConnections, wsMessagesSent, placedBets)

	h := newHub(log)
	s := newServer(log)

	// Gera e envia ofertas simuladas para todos os clientes conectados a cada 3 segundos
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		version := 1
		for range ticker.C {
			for i := range offerCatalog {
				for _, book := range bookServices {
					u := offerCatalog[i]
					u.Price = rndPrice(-110)
					if u.Line != nil {
						u.Line = ptr(rndLine(*u.Line))
					}
					u.Service = book
					u.UpdatedAt = time.Now().UTC()
					u.Source = cfg.ServiceName
					u.Version = version
					h.broadcast(u)
				}
			}
			version++
		}
	}()

	// ==== MUX PÚBLICO (HTTP principal): /ws e /book/place
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	appMux.HandleFunc("/book/place", s.placeHandler)

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	// Servidor de métricas em goroutine
	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("book simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Servidor público (WS + book place)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("book simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws,/book/place"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
