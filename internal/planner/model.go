package planner

import "time"

// Market identifica o tipo de mercado da aposta
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
)

// RequiresLine informa se o mercado exige linha (spread/total) ou não (moneyline)
func (m Market) RequiresLine() bool {
	return m == MarketSpread || m == MarketTotal
}

// BetTarget descreve a aposta que o usuário quer preencher
type BetTarget struct {
	Sport          string   `json:"sport"`
	EventID        string   `json:"event_id"`
	Description    string   `json:"description,omitempty"`
	Market         Market   `json:"market"`
	Selection      string   `json:"selection"` // time ou "over"/"under"
	Line           *float64 `json:"line,omitempty"`
	ReferencePrice int      `json:"reference_price"` // odds americanas
}

// ToleranceConfig define a folga aceita no matching de ofertas
type ToleranceConfig struct {
	PointTolerance      float64 `json:"point_tolerance"`       // desvio máximo da linha (ex: 0.5)
	PriceToleranceCents int     `json:"price_tolerance_cents"` // desvio adverso máximo do preço (ex: 10)
}

// CandidateOffer é o preço corrente de um book para o BetTarget,
// junto com o saldo disponível da conta correspondente.
// Snapshot do momento do planejamento; fica obsoleto imediatamente.
type CandidateOffer struct {
	AccountID      string   `json:"account_id"`
	Service        string   `json:"service"`
	Price          int      `json:"price"`
	Line           *float64 `json:"line,omitempty"`
	AvailableCents int64    `json:"available_cents"`
}

// AllocationLeg é um item do plano de execução
type AllocationLeg struct {
	AccountID  string   `json:"account_id"`
	Service    string   `json:"service"`
	Price      int      `json:"price"`
	Line       *float64 `json:"line,omitempty"`
	StakeCents int64    `json:"stake_cents"`
	Sequence   int      `json:"sequence"` // rank por qualidade de preço, base 0
}

// Status do plano: DRAFTED → COMMITTED | CANCELLED (terminais)
type Status string

const (
	StatusDrafted   Status = "DRAFTED"
	StatusCommitted Status = "COMMITTED"
	StatusCancelled Status = "CANCELLED"
)

// ExecutionPlan é a sequência ordenada de pernas para um BetTarget
type ExecutionPlan struct {
	ID               string          `json:"id"`
	Target           BetTarget       `json:"target"`
	Tolerance        ToleranceConfig `json:"tolerance"`
	TargetStakeCents int64           `json:"target_stake_cents"`
	Legs             []AllocationLeg `json:"legs"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FilledCents soma o stake planejado de todas as pernas (<= TargetStakeCents)
func (p *ExecutionPlan) FilledCents() int64 {
	var sum int64
	for _, l := range p.Legs {
		sum += l.StakeCents
	}
	return sum
}
