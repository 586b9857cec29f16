package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/master-bet-engine/internal/odds"
)

func fptr(f float64) *float64 { return &f }

func spreadTarget() BetTarget {
	return BetTarget{
		Sport:          "basketball",
		EventID:        "EVT_001",
		Market:         MarketSpread,
		Selection:      "Celtics",
		Line:           fptr(-7.5),
		ReferencePrice: -110,
	}
}

func defaultTol() ToleranceConfig {
	return ToleranceConfig{PointTolerance: 0.5, PriceToleranceCents: 10}
}

func offer(account, service string, price int, line *float64, available int64) CandidateOffer {
	return CandidateOffer{
		AccountID:      account,
		Service:        service,
		Price:          price,
		Line:           line,
		AvailableCents: available,
	}
}

func TestPlanWaterfall(t *testing.T) {
	// cenário do fluxo principal: alvo $300, saldos [100, 50, 500] da melhor
	// pra pior odd => pernas [100, 50, 150], fill completo
	offers := []CandidateOffer{
		{AccountID: "acc-c", Service: "godds", Price: -115, Line: fptr(-7.5), AvailableCents: 50000},
		{AccountID: "acc-a", Service: "abcwager", Price: -105, Line: fptr(-7.5), AvailableCents: 10000},
		{AccountID: "acc-b", Service: "fesster", Price: -110, Line: fptr(-7.5), AvailableCents: 5000},
	}

	plan, err := Plan(spreadTarget(), defaultTol(), 30000, offers)
	require.NoError(t, err)

	require.Len(t, plan.Legs, 3)
	assert.Equal(t, "acc-a", plan.Legs[0].AccountID)
	assert.Equal(t, int64(10000), plan.Legs[0].StakeCents)
	assert.Equal(t, "acc-b", plan.Legs[1].AccountID)
	assert.Equal(t, int64(5000), plan.Legs[1].StakeCents)
	assert.Equal(t, "acc-c", plan.Legs[2].AccountID)
	assert.Equal(t, int64(15000), plan.Legs[2].StakeCents)

	assert.Equal(t, int64(30000), plan.FilledCents())
	assert.Equal(t, StatusDrafted, plan.Status)
	assert.NotEmpty(t, plan.ID)
}

func TestPlanPartialFill(t *testing.T) {
	// liquidez insuficiente: fill parcial é plano válido, não erro
	offers := []CandidateOffer{
		offer("acc-a", "abcwager", -105, fptr(-7.5), 10000),
		offer("acc-b", "fesster", -110, fptr(-7.5), 5000),
	}

	plan, err := Plan(spreadTarget(), defaultTol(), 30000, offers)
	require.NoError(t, err)

	require.Len(t, plan.Legs, 2)
	assert.Equal(t, int64(15000), plan.FilledCents())
	assert.Less(t, plan.FilledCents(), plan.TargetStakeCents)
}

func TestPlanFullFillWhenLiquiditySuffices(t *testing.T) {
	// propriedade: se a soma dos saldos qualificados cobre o alvo, fill exato
	offers := []CandidateOffer{
		offer("acc-a", "abcwager", -110, fptr(-7.5), 20000),
		offer("acc-b", "fesster", -110, fptr(-7.5), 20000),
	}

	plan, err := Plan(spreadTarget(), defaultTol(), 25000, offers)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), plan.FilledCents())
}

func TestPlanOrderedByPrice(t *testing.T) {
	offers := []CandidateOffer{
		offer("acc-d", "strikerich", -118, fptr(-7.5), 9000),
		offer("acc-a", "abcwager", 100, fptr(-7.5), 1000),
		offer("acc-c", "godds", -110, fptr(-7.5), 2000),
		offer("acc-b", "fesster", -104, fptr(-7.5), 3000),
	}

	plan, err := Plan(spreadTarget(), defaultTol(), 100000, offers)
	require.NoError(t, err)

	for i := 1; i < len(plan.Legs); i++ {
		prev, cur := plan.Legs[i-1].Price, plan.Legs[i].Price
		assert.False(t, odds.Better(cur, prev), "leg %d (%d) melhor que leg %d (%d)", i, cur, i-1, prev)
		assert.Equal(t, i, plan.Legs[i].Sequence)
	}
}

func TestPlanTieBreak(t *testing.T) {
	// empate de preço: saldo desc, depois accountId asc
	offers := []CandidateOffer{
		offer("acc-z", "godds", -110, fptr(-7.5), 5000),
		offer("acc-a", "abcwager", -110, fptr(-7.5), 5000),
		offer("acc-m", "fesster", -110, fptr(-7.5), 9000),
	}

	plan, err := Plan(spreadTarget(), defaultTol(), 100000, offers)
	require.NoError(t, err)

	require.Len(t, plan.Legs, 3)
	assert.Equal(t, "acc-m", plan.Legs[0].AccountID)
	assert.Equal(t, "acc-a", plan.Legs[1].AccountID)
	assert.Equal(t, "acc-z", plan.Legs[2].AccountID)
}

func TestPlanDeterministic(t *testing.T) {
	offers := []CandidateOffer{
		offer("acc-b", "fesster", -110, fptr(-7.5), 5000),
		offer("acc-a", "abcwager", -105, fptr(-7.5), 10000),
	}

	p1, err := Plan(spreadTarget(), defaultTol(), 12000, offers)
	require.NoError(t, err)
	p2, err := Plan(spreadTarget(), defaultTol(), 12000, offers)
	require.NoError(t, err)

	// mesmo input => mesmas pernas (IDs diferem, são uuid por plano)
	assert.Equal(t, p1.Legs, p2.Legs)
	assert.Equal(t, p1.FilledCents(), p2.FilledCents())
}

func TestPlanToleranceFiltering(t *testing.T) {
	target := spreadTarget() // linha -7.5, referência -110
	tol := ToleranceConfig{PointTolerance: 0.5, PriceToleranceCents: 10}

	t.Run("linha exatamente no limite entra", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -110, fptr(-8.0), 5000)}
		plan, err := Plan(target, tol, 5000, offers)
		require.NoError(t, err)
		assert.Len(t, plan.Legs, 1)
	})

	t.Run("linha além do limite sai", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -110, fptr(-8.5), 5000)}
		_, err := Plan(target, tol, 5000, offers)
		assert.ErrorIs(t, err, ErrNoMatchingOffers)
	})

	t.Run("preço exatamente no limite entra", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -120, fptr(-7.5), 5000)}
		plan, err := Plan(target, tol, 5000, offers)
		require.NoError(t, err)
		assert.Len(t, plan.Legs, 1)
	})

	t.Run("preço além do limite sai", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -121, fptr(-7.5), 5000)}
		_, err := Plan(target, tol, 5000, offers)
		assert.ErrorIs(t, err, ErrNoMatchingOffers)
	})

	t.Run("preço melhor que a referência sempre entra", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", 120, fptr(-7.5), 5000)}
		plan, err := Plan(target, tol, 5000, offers)
		require.NoError(t, err)
		assert.Len(t, plan.Legs, 1)
	})

	t.Run("oferta sem linha em mercado de spread sai", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -110, nil, 5000)}
		_, err := Plan(target, tol, 5000, offers)
		assert.ErrorIs(t, err, ErrNoMatchingOffers)
	})

	t.Run("saldo zero sai", func(t *testing.T) {
		offers := []CandidateOffer{offer("acc-a", "abcwager", -110, fptr(-7.5), 0)}
		_, err := Plan(target, tol, 5000, offers)
		assert.ErrorIs(t, err, ErrNoMatchingOffers)
	})
}

func TestPlanMoneylineIgnoresLine(t *testing.T) {
	target := BetTarget{
		Sport:          "baseball",
		EventID:        "EVT_002",
		Market:         MarketMoneyline,
		Selection:      "Yankees",
		ReferencePrice: 145,
	}
	offers := []CandidateOffer{offer("acc-a", "abcwager", 140, nil, 5000)}

	plan, err := Plan(target, defaultTol(), 5000, offers)
	require.NoError(t, err)
	assert.Len(t, plan.Legs, 1)
}

func TestPlanValidation(t *testing.T) {
	t.Run("stake inválido", func(t *testing.T) {
		_, err := Plan(spreadTarget(), defaultTol(), 0, nil)
		assert.ErrorIs(t, err, ErrInvalidStake)

		_, err = Plan(spreadTarget(), defaultTol(), -100, nil)
		assert.ErrorIs(t, err, ErrInvalidStake)
	})

	t.Run("sem ofertas", func(t *testing.T) {
		_, err := Plan(spreadTarget(), defaultTol(), 5000, nil)
		assert.ErrorIs(t, err, ErrNoMatchingOffers)
	})

	t.Run("spread sem linha no alvo", func(t *testing.T) {
		target := spreadTarget()
		target.Line = nil
		_, err := Plan(target, defaultTol(), 5000, nil)
		assert.ErrorIs(t, err, ErrMissingLine)
	})

	t.Run("referência fora da faixa americana", func(t *testing.T) {
		target := spreadTarget()
		target.ReferencePrice = 50
		_, err := Plan(target, defaultTol(), 5000, nil)
		assert.ErrorIs(t, err, odds.ErrInvalidPrice)
	})
}

func TestRemoveLeg(t *testing.T) {
	build := func(t *testing.T) *ExecutionPlan {
		offers := []CandidateOffer{
			offer("acc-a", "abcwager", -105, fptr(-7.5), 10000),
			offer("acc-b", "fesster", -110, fptr(-7.5), 5000),
			offer("acc-c", "godds", -115, fptr(-7.5), 50000),
		}
		plan, err := Plan(spreadTarget(), defaultTol(), 30000, offers)
		require.NoError(t, err)
		require.Len(t, plan.Legs, 3)
		return plan
	}

	t.Run("deleção pura, sem re-plan", func(t *testing.T) {
		plan := build(t)
		removedStake := plan.Legs[1].StakeCents
		before := plan.FilledCents()

		require.NoError(t, plan.RemoveLeg(1))

		require.Len(t, plan.Legs, 2)
		assert.Equal(t, before-removedStake, plan.FilledCents())
		// as outras pernas não mudam de stake, só renumeram
		assert.Equal(t, "acc-a", plan.Legs[0].AccountID)
		assert.Equal(t, int64(10000), plan.Legs[0].StakeCents)
		assert.Equal(t, 0, plan.Legs[0].Sequence)
		assert.Equal(t, "acc-c", plan.Legs[1].AccountID)
		assert.Equal(t, int64(15000), plan.Legs[1].StakeCents)
		assert.Equal(t, 1, plan.Legs[1].Sequence)
	})

	t.Run("índice fora do intervalo", func(t *testing.T) {
		plan := build(t)
		assert.ErrorIs(t, plan.RemoveLeg(-1), ErrIndexOutOfRange)
		assert.ErrorIs(t, plan.RemoveLeg(3), ErrIndexOutOfRange)
		assert.Len(t, plan.Legs, 3) // plano intacto
	})

	t.Run("plano não-rascunho rejeita", func(t *testing.T) {
		plan := build(t)
		require.NoError(t, plan.Cancel())
		assert.ErrorIs(t, plan.RemoveLeg(0), ErrNotDraft)
	})
}

func TestCancel(t *testing.T) {
	offers := []CandidateOffer{offer("acc-a", "abcwager", -110, fptr(-7.5), 5000)}
	plan, err := Plan(spreadTarget(), defaultTol(), 5000, offers)
	require.NoError(t, err)

	require.NoError(t, plan.Cancel())
	assert.Equal(t, StatusCancelled, plan.Status)
	// terminal: não volta pra rascunho nem cancela de novo
	assert.ErrorIs(t, plan.Cancel(), ErrNotDraft)
}
