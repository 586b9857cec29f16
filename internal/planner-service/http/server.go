package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/odds"
	"github.com/radieske/master-bet-engine/internal/planner"
	"github.com/radieske/master-bet-engine/internal/planner-service/accounts"
	"github.com/radieske/master-bet-engine/internal/planner-service/dto"
	"github.com/radieske/master-bet-engine/internal/planner-service/offers"
	"github.com/radieske/master-bet-engine/internal/planner-service/store"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// Interfaces dos colaboradores, pra permitir fakes nos testes

type OfferSource interface {
	Current(ctx context.Context, target planner.BetTarget) ([]offers.BookOffer, error)
}

type AccountSource interface {
	ListActive(ctx context.Context) ([]accounts.Account, error)
}

type PlanStore interface {
	Save(ctx context.Context, p *planner.ExecutionPlan) error
	Get(ctx context.Context, planID string) (*planner.ExecutionPlan, error)
	Update(ctx context.Context, p *planner.ExecutionPlan) error
	Delete(ctx context.Context, planID string) error
}

type Reader interface {
	SearchTargets(ctx context.Context, search string, limit int) ([]dto.TargetSearchItem, error)
	ListHistory(ctx context.Context, limit, offset int) ([]dto.HistoryPlan, error)
}

type Publisher interface {
	PublishPlanCommitted(ctx context.Context, e events.PlanCommitted) error
}

// API é o servidor HTTP público do planner-service
type API struct {
	Log      *zap.Logger
	Offers   OfferSource
	Accounts AccountSource
	Store    PlanStore
	Book     planner.PlacementClient
	Read     Reader
	Publ     Publisher

	OnPlanCreated func()             // métricas (counter++)
	OnLegPlaced   func(success bool) // métricas por perna no commit
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/targets", a.searchTargets)
	r.Post("/v1/plans", a.createPlan)
	r.Get("/v1/plans/{id}", a.getPlan)
	r.Delete("/v1/plans/{id}", a.cancelPlan)
	r.Delete("/v1/plans/{id}/legs/{index}", a.removeLeg)
	r.Post("/v1/plans/{id}/commit", a.commitPlan)
	r.Get("/v1/history", a.listHistory)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// searchTargets busca seleções apostáveis por nome de time (?search=)
func (a *API) searchTargets(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if len(search) < 2 {
		writeError(w, http.StatusBadRequest, "search requires at least 2 characters")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := a.Read.SearchTargets(r.Context(), search, limit)
	if err != nil {
		a.Log.Error("search targets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if items == nil {
		items = []dto.TargetSearchItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// createPlan monta o plano waterfall a partir do snapshot corrente de
// ofertas e saldos e o guarda como rascunho
func (a *API) createPlan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.StakeCents <= 0 {
		writeError(w, http.StatusBadRequest, "invalid stake")
		return
	}

	// 1) Snapshot das ofertas correntes por book
	bookOffers, err := a.Offers.Current(r.Context(), req.Target)
	if err != nil {
		a.Log.Error("fetch offers", zap.Error(err))
		writeError(w, http.StatusBadGateway, "offer source unavailable")
		return
	}

	// 2) Saldos disponíveis por conta
	accts, err := a.Accounts.ListActive(r.Context())
	if err != nil {
		a.Log.Error("fetch accounts", zap.Error(err))
		writeError(w, http.StatusBadGateway, "account source unavailable")
		return
	}

	// 3) Compõe candidatos: cada conta ativa num book que cotou a seleção
	candidates := composeCandidates(bookOffers, accts)

	// 4) Roda o planner
	tol := planner.ToleranceConfig{
		PointTolerance:      req.PointTolerance,
		PriceToleranceCents: req.PriceToleranceCents,
	}
	plan, err := planner.Plan(req.Target, tol, req.StakeCents, candidates)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrNoMatchingOffers):
			writeError(w, http.StatusConflict, "no matching offers")
		case errors.Is(err, planner.ErrInvalidStake),
			errors.Is(err, planner.ErrMissingLine),
			errors.Is(err, odds.ErrInvalidPrice):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			a.Log.Error("plan", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "plan failed")
		}
		return
	}

	// 5) Guarda o rascunho
	if err := a.Store.Save(r.Context(), plan); err != nil {
		a.Log.Error("save plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save plan failed")
		return
	}

	if a.OnPlanCreated != nil {
		a.OnPlanCreated()
	}
	a.Log.Info("plan drafted",
		zap.String("plan_id", plan.ID),
		zap.Int64("target_cents", plan.TargetStakeCents),
		zap.Int64("filled_cents", plan.FilledCents()),
		zap.Int("legs", len(plan.Legs)),
	)
	writeJSON(w, http.StatusCreated, dto.NewPlanResponse(plan))
}

// composeCandidates junta oferta de book com conta: uma candidata por
// conta ativa no serviço que cotou
func composeCandidates(bookOffers []offers.BookOffer, accts []accounts.Account) []planner.CandidateOffer {
	byService := make(map[string][]accounts.Account, len(accts))
	for _, ac := range accts {
		byService[ac.Service] = append(byService[ac.Service], ac)
	}

	var out []planner.CandidateOffer
	for _, bo := range bookOffers {
		for _, ac := range byService[bo.Service] {
			out = append(out, planner.CandidateOffer{
				AccountID:      ac.ID,
				Service:        bo.Service,
				Price:          bo.Price,
				Line:           bo.Line,
				AvailableCents: ac.AvailableCents,
			})
		}
	}
	return out
}

func (a *API) getPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := a.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPlanResponse(plan))
}

// removeLeg poda uma perna do rascunho. Deleção pura: o restante do plano
// não é re-otimizado (o usuário decide se refaz o plano)
func (a *API) removeLeg(w http.ResponseWriter, r *http.Request) {
	plan, ok := a.loadPlan(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid leg index")
		return
	}

	if err := plan.RemoveLeg(index); err != nil {
		switch {
		case errors.Is(err, planner.ErrIndexOutOfRange):
			writeError(w, http.StatusBadRequest, "leg index out of range")
		case errors.Is(err, planner.ErrNotDraft):
			writeError(w, http.StatusConflict, "plan is not a draft")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := a.Store.Update(r.Context(), plan); err != nil {
		a.Log.Error("update plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update plan failed")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPlanResponse(plan))
}

// commitPlan executa as pernas em ordem de rank, sequencial, sem abortar
// nas falhas; devolve o desfecho de todas as pernas
func (a *API) commitPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := a.loadPlan(w, r)
	if !ok {
		return
	}

	result, err := planner.Commit(r.Context(), a.Book, plan)
	if err != nil {
		if errors.Is(err, planner.ErrNotDraft) {
			writeError(w, http.StatusConflict, "plan already finalized")
			return
		}
		a.Log.Error("commit", zap.String("plan_id", plan.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "commit failed")
		return
	}

	if a.OnLegPlaced != nil {
		for _, lr := range result.Legs {
			a.OnLegPlaced(lr.Success)
		}
	}

	// Estado terminal persiste pro GET; falha aqui não desfaz as colocações
	if err := a.Store.Update(r.Context(), plan); err != nil {
		a.Log.Error("persist committed plan", zap.String("plan_id", plan.ID), zap.Error(err))
	}

	// Evento pro history-worker; commit já aconteceu, falha só é logada
	if err := a.Publ.PublishPlanCommitted(r.Context(), committedEvent(plan, result)); err != nil {
		a.Log.Error("publish plan_committed", zap.String("plan_id", plan.ID), zap.Error(err))
	}

	a.Log.Info("plan committed",
		zap.String("plan_id", plan.ID),
		zap.Int("legs", len(result.Legs)),
		zap.Int64("placed_cents", result.PlacedCents),
	)
	writeJSON(w, http.StatusOK, dto.CommitResponse{
		PlanID:      plan.ID,
		Status:      plan.Status,
		PlacedCents: result.PlacedCents,
		Legs:        result.Legs,
	})
}

// cancelPlan descarta um rascunho; nada foi enviado aos books ainda
func (a *API) cancelPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := a.loadPlan(w, r)
	if !ok {
		return
	}
	if err := plan.Cancel(); err != nil {
		writeError(w, http.StatusConflict, "plan already finalized")
		return
	}
	if err := a.Store.Update(r.Context(), plan); err != nil {
		a.Log.Error("update plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update plan failed")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPlanResponse(plan))
}

func (a *API) listHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := a.Read.ListHistory(r.Context(), limit, offset)
	if err != nil {
		a.Log.Error("list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history failed")
		return
	}
	if items == nil {
		items = []dto.HistoryPlan{}
	}
	writeJSON(w, http.StatusOK, items)
}

// loadPlan resolve o {id} da rota; responde 404 se não existir/expirou
func (a *API) loadPlan(w http.ResponseWriter, r *http.Request) (*planner.ExecutionPlan, bool) {
	id := chi.URLParam(r, "id")
	plan, err := a.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plan not found")
			return nil, false
		}
		a.Log.Error("load plan", zap.String("plan_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load plan failed")
		return nil, false
	}
	return plan, true
}

func committedEvent(plan *planner.ExecutionPlan, result *planner.CommitResult) events.PlanCommitted {
	legs := make([]events.LegOutcome, 0, len(result.Legs))
	for _, lr := range result.Legs {
		legs = append(legs, events.LegOutcome{
			Sequence:      lr.Leg.Sequence,
			AccountID:     lr.Leg.AccountID,
			Service:       lr.Leg.Service,
			Price:         lr.Leg.Price,
			Line:          lr.Leg.Line,
			StakeCents:    lr.Leg.StakeCents,
			Success:       lr.Success,
			PlacedCents:   lr.PlacedCents,
			FailureReason: lr.FailureReason,
		})
	}
	return events.PlanCommitted{
		PlanID:           plan.ID,
		EventID:          plan.Target.EventID,
		Sport:            plan.Target.Sport,
		Market:           string(plan.Target.Market),
		Selection:        plan.Target.Selection,
		Line:             plan.Target.Line,
		ReferencePrice:   plan.Target.ReferencePrice,
		TargetStakeCents: plan.TargetStakeCents,
		FilledStakeCents: plan.FilledCents(),
		PlacedStakeCents: result.PlacedCents,
		Legs:             legs,
	}
}
