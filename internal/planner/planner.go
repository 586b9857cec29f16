package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/master-bet-engine/internal/odds"
)

var (
	ErrInvalidStake     = errors.New("invalid stake")
	ErrMissingLine      = errors.New("market requires a line")
	ErrNoMatchingOffers = errors.New("no matching offers")
	ErrIndexOutOfRange  = errors.New("leg index out of range")
	ErrNotDraft         = errors.New("plan is not in draft state")
)

// Plan monta o plano de execução waterfall: filtra ofertas pela tolerância,
// ordena da melhor pra pior odd e preenche o stake alvo de forma gulosa até
// esgotar o alvo ou a liquidez. Preenchimento parcial é válido; quem decide
// se aceita é o chamador. Função pura sobre o snapshot recebido.
func Plan(target BetTarget, tol ToleranceConfig, targetStakeCents int64, offers []CandidateOffer) (*ExecutionPlan, error) {
	if targetStakeCents <= 0 {
		return nil, ErrInvalidStake
	}
	if target.Market.RequiresLine() && target.Line == nil {
		return nil, fmt.Errorf("%w: market=%s", ErrMissingLine, target.Market)
	}
	if !odds.Valid(target.ReferencePrice) {
		return nil, fmt.Errorf("%w: reference=%d", odds.ErrInvalidPrice, target.ReferencePrice)
	}

	// 1) Filtra ofertas qualificadas (tolerância de linha e preço, saldo > 0)
	qualified := make([]CandidateOffer, 0, len(offers))
	for _, o := range offers {
		if qualifies(target, tol, o) {
			qualified = append(qualified, o)
		}
	}
	if len(qualified) == 0 {
		return nil, ErrNoMatchingOffers
	}

	// 2) Ordena: melhor preço primeiro; empate por saldo desc, depois accountId asc
	sort.SliceStable(qualified, func(i, j int) bool {
		ci, cj := odds.Cents(qualified[i].Price), odds.Cents(qualified[j].Price)
		if ci != cj {
			return ci > cj
		}
		if qualified[i].AvailableCents != qualified[j].AvailableCents {
			return qualified[i].AvailableCents > qualified[j].AvailableCents
		}
		return qualified[i].AccountID < qualified[j].AccountID
	})

	// 3) Preenchimento guloso: min(restante, saldo disponível) por perna
	remaining := targetStakeCents
	legs := make([]AllocationLeg, 0, len(qualified))
	for _, o := range qualified {
		if remaining == 0 {
			break
		}
		stake := o.AvailableCents
		if stake > remaining {
			stake = remaining
		}
		legs = append(legs, AllocationLeg{
			AccountID:  o.AccountID,
			Service:    o.Service,
			Price:      o.Price,
			Line:       o.Line,
			StakeCents: stake,
			Sequence:   len(legs),
		})
		remaining -= stake
	}

	return &ExecutionPlan{
		ID:               uuid.NewString(),
		Target:           target,
		Tolerance:        tol,
		TargetStakeCents: targetStakeCents,
		Legs:             legs,
		Status:           StatusDrafted,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// qualifies decide se uma oferta serve para o alvo dentro da tolerância.
// Linha: |offer.line - target.line| <= pointTolerance (limite inclusivo).
// Preço: no máximo priceToleranceCents pior que a referência.
func qualifies(target BetTarget, tol ToleranceConfig, o CandidateOffer) bool {
	if o.AvailableCents <= 0 || !odds.Valid(o.Price) {
		return false
	}
	if target.Market.RequiresLine() {
		if o.Line == nil {
			return false
		}
		if math.Abs(*o.Line-*target.Line) > tol.PointTolerance {
			return false
		}
	}
	return odds.CentsWorse(o.Price, target.ReferencePrice) <= tol.PriceToleranceCents
}

// RemoveLeg remove a perna no índice dado. Deleção pura: não redistribui o
// stake nem refaz o fill com outras ofertas — o usuário cura o plano na mão.
// As demais pernas mantêm stake e ordem relativa; Sequence é renumerado.
func (p *ExecutionPlan) RemoveLeg(index int) error {
	if p.Status != StatusDrafted {
		return ErrNotDraft
	}
	if index < 0 || index >= len(p.Legs) {
		return fmt.Errorf("%w: index=%d legs=%d", ErrIndexOutOfRange, index, len(p.Legs))
	}
	p.Legs = append(p.Legs[:index], p.Legs[index+1:]...)
	for i := range p.Legs {
		p.Legs[i].Sequence = i
	}
	return nil
}

// Cancel descarta um plano rascunho. Estado terminal, sem efeitos externos.
func (p *ExecutionPlan) Cancel() error {
	if p.Status != StatusDrafted {
		return ErrNotDraft
	}
	p.Status = StatusCancelled
	return nil
}
