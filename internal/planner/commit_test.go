package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlacer devolve resultados pré-programados por accountId
type fakePlacer struct {
	results map[string]PlacementResult
	errs    map[string]error
	calls   []string
}

func (f *fakePlacer) Place(_ context.Context, _ BetTarget, leg AllocationLeg) (PlacementResult, error) {
	f.calls = append(f.calls, leg.AccountID)
	if err, ok := f.errs[leg.AccountID]; ok {
		return PlacementResult{}, err
	}
	return f.results[leg.AccountID], nil
}

func threeLegPlan(t *testing.T) *ExecutionPlan {
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

func TestCommitContinuesOnLegFailure(t *testing.T) {
	plan := threeLegPlan(t)
	placer := &fakePlacer{
		results: map[string]PlacementResult{
			"acc-a": {Success: true, PlacedCents: 10000},
			"acc-b": {Success: false, Reason: "price moved"},
			"acc-c": {Success: true, PlacedCents: 15000},
		},
	}

	res, err := Commit(context.Background(), placer, plan)
	require.NoError(t, err)

	// execução sequencial em ordem de rank, sem abortar na falha do meio
	assert.Equal(t, []string{"acc-a", "acc-b", "acc-c"}, placer.calls)

	require.Len(t, res.Legs, 3)
	assert.True(t, res.Legs[0].Success)
	assert.False(t, res.Legs[1].Success)
	assert.Equal(t, "price moved", res.Legs[1].FailureReason)
	assert.True(t, res.Legs[2].Success)
	assert.Equal(t, int64(25000), res.PlacedCents)

	assert.Equal(t, StatusCommitted, plan.Status)
}

func TestCommitTransportErrorIsPerLeg(t *testing.T) {
	plan := threeLegPlan(t)
	placer := &fakePlacer{
		results: map[string]PlacementResult{
			"acc-a": {Success: true, PlacedCents: 10000},
			"acc-c": {Success: true, PlacedCents: 15000},
		},
		errs: map[string]error{
			"acc-b": errors.New("book timeout"),
		},
	}

	res, err := Commit(context.Background(), placer, plan)
	require.NoError(t, err)

	assert.False(t, res.Legs[1].Success)
	assert.Equal(t, "book timeout", res.Legs[1].FailureReason)
	assert.Equal(t, int64(25000), res.PlacedCents)
}

func TestCommitRejectsNonDraft(t *testing.T) {
	plan := threeLegPlan(t)
	placer := &fakePlacer{results: map[string]PlacementResult{
		"acc-a": {Success: true},
		"acc-b": {Success: true},
		"acc-c": {Success: true},
	}}

	_, err := Commit(context.Background(), placer, plan)
	require.NoError(t, err)

	// COMMITTED é terminal: segundo commit é rejeitado sem tocar no book
	calls := len(placer.calls)
	_, err = Commit(context.Background(), placer, plan)
	assert.ErrorIs(t, err, ErrNotDraft)
	assert.Equal(t, calls, len(placer.calls))
}

func TestCommitDefaultsPlacedToStake(t *testing.T) {
	plan := threeLegPlan(t)
	placer := &fakePlacer{results: map[string]PlacementResult{
		"acc-a": {Success: true}, // book não informou valor colocado
		"acc-b": {Success: true, PlacedCents: 5000},
		"acc-c": {Success: true, PlacedCents: 15000},
	}}

	res, err := Commit(context.Background(), placer, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.Legs[0].PlacedCents)
	assert.Equal(t, int64(30000), res.PlacedCents)
}
