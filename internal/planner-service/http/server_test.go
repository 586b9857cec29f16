package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/planner"
	"github.com/radieske/master-bet-engine/internal/planner-service/accounts"
	"github.com/radieske/master-bet-engine/internal/planner-service/dto"
	"github.com/radieske/master-bet-engine/internal/planner-service/offers"
	"github.com/radieske/master-bet-engine/internal/planner-service/store"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

func fptr(f float64) *float64 { return &f }

// --- fakes ---

type fakeOffers struct {
	offers []offers.BookOffer
	err    error
}

func (f *fakeOffers) Current(context.Context, planner.BetTarget) ([]offers.BookOffer, error) {
	return f.offers, f.err
}

type fakeAccounts struct {
	accts []accounts.Account
	err   error
}

func (f *fakeAccounts) ListActive(context.Context) ([]accounts.Account, error) {
	return f.accts, f.err
}

type memStore struct {
	plans map[string]*planner.ExecutionPlan
}

func newMemStore() *memStore { return &memStore{plans: map[string]*planner.ExecutionPlan{}} }

func (m *memStore) clone(p *planner.ExecutionPlan) *planner.ExecutionPlan {
	b, _ := json.Marshal(p)
	var cp planner.ExecutionPlan
	_ = json.Unmarshal(b, &cp)
	return &cp
}

func (m *memStore) Save(_ context.Context, p *planner.ExecutionPlan) error {
	m.plans[p.ID] = m.clone(p)
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*planner.ExecutionPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.clone(p), nil
}

func (m *memStore) Update(_ context.Context, p *planner.ExecutionPlan) error {
	m.plans[p.ID] = m.clone(p)
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

type fakeBook struct {
	results map[string]planner.PlacementResult
	calls   []string
}

func (f *fakeBook) Place(_ context.Context, _ planner.BetTarget, leg planner.AllocationLeg) (planner.PlacementResult, error) {
	f.calls = append(f.calls, leg.AccountID)
	return f.results[leg.AccountID], nil
}

type fakeReader struct {
	targets []dto.TargetSearchItem
	history []dto.HistoryPlan
}

func (f *fakeReader) SearchTargets(context.Context, string, int) ([]dto.TargetSearchItem, error) {
	return f.targets, nil
}

func (f *fakeReader) ListHistory(context.Context, int, int) ([]dto.HistoryPlan, error) {
	return f.history, nil
}

type fakePublisher struct {
	published []events.PlanCommitted
}

func (f *fakePublisher) PublishPlanCommitted(_ context.Context, e events.PlanCommitted) error {
	f.published = append(f.published, e)
	return nil
}

type fixture struct {
	api   *API
	store *memStore
	book  *fakeBook
	publ  *fakePublisher
	srv   *httptest.Server
}

func newFixture(t *testing.T, bookOffers []offers.BookOffer, accts []accounts.Account) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		book:  &fakeBook{results: map[string]planner.PlacementResult{}},
		publ:  &fakePublisher{},
	}
	f.api = &API{
		Log:      zap.NewNop(),
		Offers:   &fakeOffers{offers: bookOffers},
		Accounts: &fakeAccounts{accts: accts},
		Store:    f.store,
		Book:     f.book,
		Read:     &fakeReader{},
		Publ:     f.publ,
	}
	f.srv = httptest.NewServer(f.api.Router())
	t.Cleanup(f.srv.Close)
	return f
}

func defaultFixture(t *testing.T) *fixture {
	return newFixture(t,
		[]offers.BookOffer{
			{Service: "abcwager", Price: -105, Line: fptr(-7.5)},
			{Service: "fesster", Price: -110, Line: fptr(-7.5)},
			{Service: "godds", Price: -115, Line: fptr(-7.5)},
		},
		[]accounts.Account{
			{ID: "acc-a", Service: "abcwager", AvailableCents: 10000},
			{ID: "acc-b", Service: "fesster", AvailableCents: 5000},
			{ID: "acc-c", Service: "godds", AvailableCents: 50000},
		},
	)
}

func planRequest(stake int64) dto.CreatePlanRequest {
	return dto.CreatePlanRequest{
		Target: planner.BetTarget{
			Sport:          "basketball",
			EventID:        "EVT_001",
			Market:         planner.MarketSpread,
			Selection:      "Celtics",
			Line:           fptr(-7.5),
			ReferencePrice: -110,
		},
		StakeCents:          stake,
		PointTolerance:      0.5,
		PriceToleranceCents: 10,
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func createPlan(t *testing.T, f *fixture, stake int64) dto.PlanResponse {
	t.Helper()
	res := postJSON(t, f.srv.URL+"/v1/plans", planRequest(stake))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return decode[dto.PlanResponse](t, res)
}

// --- testes ---

func TestCreatePlan(t *testing.T) {
	f := defaultFixture(t)

	plan := createPlan(t, f, 30000)

	assert.Equal(t, planner.StatusDrafted, plan.Status)
	assert.Equal(t, int64(30000), plan.FilledStakeCents)
	require.Len(t, plan.Legs, 3)
	assert.Equal(t, "acc-a", plan.Legs[0].AccountID)
	assert.Equal(t, int64(15000), plan.Legs[2].StakeCents)

	// rascunho ficou no store e o GET devolve igual
	res, err := http.Get(f.srv.URL + "/v1/plans/" + plan.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[dto.PlanResponse](t, res)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, plan.Legs, got.Legs)
}

func TestCreatePlanInvalidStake(t *testing.T) {
	f := defaultFixture(t)
	res := postJSON(t, f.srv.URL+"/v1/plans", planRequest(0))
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreatePlanNoMatchingOffers(t *testing.T) {
	// nenhum book cotou a seleção
	f := newFixture(t, nil, []accounts.Account{{ID: "acc-a", Service: "abcwager", AvailableCents: 10000}})
	res := postJSON(t, f.srv.URL+"/v1/plans", planRequest(30000))
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestRemoveLeg(t *testing.T) {
	f := defaultFixture(t)
	plan := createPlan(t, f, 30000)

	req, _ := http.NewRequest(http.MethodDelete, f.srv.URL+"/v1/plans/"+plan.ID+"/legs/1", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	got := decode[dto.PlanResponse](t, res)
	require.Len(t, got.Legs, 2)
	assert.Equal(t, int64(25000), got.FilledStakeCents)
	assert.Equal(t, "acc-a", got.Legs[0].AccountID)
	assert.Equal(t, "acc-c", got.Legs[1].AccountID)
}

func TestRemoveLegOutOfRange(t *testing.T) {
	f := defaultFixture(t)
	plan := createPlan(t, f, 30000)

	req, _ := http.NewRequest(http.MethodDelete, f.srv.URL+"/v1/plans/"+plan.ID+"/legs/9", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// plano segue intacto
	stored, err := f.store.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Legs, 3)
}

func TestCommitMixedOutcomes(t *testing.T) {
	f := defaultFixture(t)
	plan := createPlan(t, f, 30000)

	f.book.results["acc-a"] = planner.PlacementResult{Success: true, PlacedCents: 10000}
	f.book.results["acc-b"] = planner.PlacementResult{Success: false, Reason: "price moved"}
	f.book.results["acc-c"] = planner.PlacementResult{Success: true, PlacedCents: 15000}

	res := postJSON(t, f.srv.URL+"/v1/plans/"+plan.ID+"/commit", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := decode[dto.CommitResponse](t, res)

	// sequencial em ordem de rank, sem abortar na falha do meio
	assert.Equal(t, []string{"acc-a", "acc-b", "acc-c"}, f.book.calls)
	assert.Equal(t, planner.StatusCommitted, out.Status)
	assert.Equal(t, int64(25000), out.PlacedCents)
	require.Len(t, out.Legs, 3)
	assert.True(t, out.Legs[0].Success)
	assert.Equal(t, "price moved", out.Legs[1].FailureReason)
	assert.True(t, out.Legs[2].Success)

	// evento publicado com os desfechos por perna
	require.Len(t, f.publ.published, 1)
	ev := f.publ.published[0]
	assert.Equal(t, plan.ID, ev.PlanID)
	assert.Equal(t, int64(25000), ev.PlacedStakeCents)
	require.Len(t, ev.Legs, 3)
	assert.False(t, ev.Legs[1].Success)

	// segundo commit é rejeitado: COMMITTED é terminal
	res2 := postJSON(t, f.srv.URL+"/v1/plans/"+plan.ID+"/commit", nil)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusConflict, res2.StatusCode)
	assert.Len(t, f.book.calls, 3)
}

func TestCancelPlan(t *testing.T) {
	f := defaultFixture(t)
	plan := createPlan(t, f, 30000)

	req, _ := http.NewRequest(http.MethodDelete, f.srv.URL+"/v1/plans/"+plan.ID, nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[dto.PlanResponse](t, res)
	assert.Equal(t, planner.StatusCancelled, got.Status)

	// cancelado não commita
	res2 := postJSON(t, f.srv.URL+"/v1/plans/"+plan.ID+"/commit", nil)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusConflict, res2.StatusCode)
	assert.Empty(t, f.book.calls)
}

func TestGetPlanNotFound(t *testing.T) {
	f := defaultFixture(t)
	res, err := http.Get(f.srv.URL + "/v1/plans/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSearchTargetsValidation(t *testing.T) {
	f := defaultFixture(t)
	res, err := http.Get(f.srv.URL + "/v1/targets?search=a")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
