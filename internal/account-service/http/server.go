package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/account-service/dto"
	"github.com/radieske/master-bet-engine/internal/account-service/repo"
)

// Repo define a interface do ledger de contas usada pelo handler HTTP
type Repo interface {
	List(ctx context.Context, status, service string) ([]repo.Account, error)
	Create(ctx context.Context, service, username string) (repo.Account, error)
	Deposit(ctx context.Context, accountID string, amount int64, externalRef string) (newBalance int64, err error)
	Reserve(ctx context.Context, accountID string, amount int64, externalRef string) (reservationID string, err error)
	Settle(ctx context.Context, accountID, externalRef string) error
	Release(ctx context.Context, accountID, externalRef string) error
}

// Server expõe endpoints HTTP do ledger de contas de bookmaker
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de contas
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API de contas
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", s.accounts)        // GET ?status=&service= | POST
	mux.HandleFunc("/accounts/deposit", s.deposit) // POST
	mux.HandleFunc("/accounts/reserve", s.reserve) // POST
	mux.HandleFunc("/accounts/settle", s.settle)   // POST
	mux.HandleFunc("/accounts/release", s.release) // POST
	return mux
}

func (s *Server) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.list(w, r)
	case http.MethodPost:
		s.create(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// list retorna as contas com saldo disponível calculado
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	service := r.URL.Query().Get("service")

	accts, err := s.repo.List(r.Context(), status, service)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.AccountResponse, 0, len(accts))
	for _, a := range accts {
		out = append(out, toResponse(a))
	}
	writeJSON(w, out)
}

// create cadastra uma conta nova de bookmaker
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Service == "" || req.Username == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	a, err := s.repo.Create(r.Context(), req.Service, req.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(a))
}

// deposit adiciona saldo à conta
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Deposit(r.Context(), req.AccountID, req.AmountCents, req.ExternalRef)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, map[string]any{"account_id": req.AccountID, "balance_cents": bal})
}

// reserve bloqueia saldo (at-risk) para uma colocação
func (s *Server) reserve(w http.ResponseWriter, r *http.Request) {
	var req dto.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.AmountCents <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	resID, err := s.repo.Reserve(r.Context(), req.AccountID, req.AmountCents, req.ExternalRef)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, dto.ReservationResponse{ReservationID: resID, Status: "PENDING"})
}

// settle efetiva uma reserva (stake consumido no book)
func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Settle(r.Context(), req.AccountID, req.ExternalRef); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"SETTLED"}`))
}

// release desfaz uma reserva, devolvendo o valor ao disponível
func (s *Server) release(w http.ResponseWriter, r *http.Request) {
	var req dto.ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Release(r.Context(), req.AccountID, req.ExternalRef); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"RELEASED"}`))
}

func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toResponse(a repo.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:             a.ID,
		Service:        a.Service,
		Username:       a.Username,
		Status:         a.Status,
		BalanceCents:   a.BalanceCents,
		AtRiskCents:    a.AtRiskCents,
		AvailableCents: a.BalanceCents - a.AtRiskCents,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
