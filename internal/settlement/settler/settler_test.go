package settler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

type fakeRepo struct {
	snap    *Snapshot
	loadErr error

	settled *SettleResult
	voided  string
	closed  string

	calls *[]string
}

func (f *fakeRepo) LoadSnapshot(ctx context.Context, marketID string) (*Snapshot, error) {
	return f.snap, f.loadErr
}

func (f *fakeRepo) MarkSettled(ctx context.Context, res *SettleResult, payouts []Payout, reason string) error {
	f.settled = res
	if f.calls != nil {
		*f.calls = append(*f.calls, "mark_settled")
	}
	return nil
}

func (f *fakeRepo) MarkVoided(ctx context.Context, marketID, reason string) error {
	f.voided = marketID
	return nil
}

func (f *fakeRepo) CloseMarket(ctx context.Context, marketID, reason string) error {
	f.closed = marketID
	return nil
}

type fakeWallet struct {
	credits   []string // betIds creditados
	creditErr error
	refunds   []string

	calls *[]string
}

func (f *fakeWallet) Credit(ctx context.Context, userID string, cents int64, externalRef string) error {
	if f.creditErr != nil {
		return f.creditErr
	}
	f.credits = append(f.credits, externalRef)
	if f.calls != nil {
		*f.calls = append(*f.calls, "credit")
	}
	return nil
}

func (f *fakeWallet) Refund(ctx context.Context, userID, externalRef string) error {
	f.refunds = append(f.refunds, externalRef)
	return nil
}

type fakeEvents struct {
	published []events.MarketSettled
}

func (f *fakeEvents) PublishMarketSettled(ctx context.Context, ev events.MarketSettled) error {
	f.published = append(f.published, ev)
	return nil
}

func snapshotFixture() *Snapshot {
	return &Snapshot{
		MarketID: "m1",
		Status:   "CLOSED",
		Outcomes: []OutcomePool{
			{OutcomeID: "o1", Label: "UP", PoolCents: 1000},
			{OutcomeID: "o2", Label: "DOWN", PoolCents: 500},
		},
		Bets: []BetStake{
			{BetID: "b1", UserID: "u1", OutcomeID: "o1", AmountCents: 1000},
			{BetID: "b2", UserID: "u2", OutcomeID: "o2", AmountCents: 500},
		},
	}
}

func TestSettleMarketAutomatic(t *testing.T) {
	var calls []string
	repo := &fakeRepo{snap: snapshotFixture(), calls: &calls}
	wallet := &fakeWallet{calls: &calls}
	ev := &fakeEvents{}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: wallet, Events: ev, RakeBps: 500}

	res, err := s.SettleMarket(context.Background(), SettleRequest{
		MarketID: "m1",
		Method:   jobs.MethodAutomatic,
	})
	require.NoError(t, err)

	// o1 tem o maior pool; pool perdedor 500, rake 25, líquido 475
	assert.Equal(t, "SETTLED", res.Status)
	assert.Equal(t, "o1", res.WinningOutcomeID)
	assert.Equal(t, int64(1500), res.TotalPoolCents)
	assert.Equal(t, int64(1475), res.PaidOutCents)
	assert.Equal(t, int64(25), res.RakeCents)

	assert.Equal(t, []string{"b1"}, wallet.credits)
	require.NotNil(t, repo.settled)

	// créditos idempotentes acontecem antes da persistência
	assert.Equal(t, []string{"credit", "mark_settled"}, calls)

	require.Len(t, ev.published, 1)
	assert.Equal(t, "m1", ev.published[0].MarketID)
	assert.Equal(t, "SETTLED", ev.published[0].Status)
}

func TestSettleMarketManual(t *testing.T) {
	repo := &fakeRepo{snap: snapshotFixture()}
	wallet := &fakeWallet{}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: wallet, RakeBps: 0}

	res, err := s.SettleMarket(context.Background(), SettleRequest{
		MarketID:         "m1",
		Method:           jobs.MethodManual,
		WinningOutcomeID: "o2",
	})
	require.NoError(t, err)

	// vencedor manual ignora o tamanho dos pools
	assert.Equal(t, "o2", res.WinningOutcomeID)
	assert.Equal(t, []string{"b2"}, wallet.credits)
}

func TestSettleMarketManualValidation(t *testing.T) {
	repo := &fakeRepo{snap: snapshotFixture()}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: &fakeWallet{}}

	_, err := s.SettleMarket(context.Background(), SettleRequest{
		MarketID: "m1",
		Method:   jobs.MethodManual,
	})
	assert.ErrorIs(t, err, ErrMissingWinningOutcome)

	_, err = s.SettleMarket(context.Background(), SettleRequest{
		MarketID:         "m1",
		Method:           jobs.MethodManual,
		WinningOutcomeID: "nao-existe",
	})
	assert.ErrorIs(t, err, ErrUnknownWinningOutcome)
	assert.Nil(t, repo.settled)
}

func TestSettleMarketAlreadySettled(t *testing.T) {
	snap := snapshotFixture()
	snap.Status = "SETTLED"
	s := &Settler{Log: zap.NewNop(), Repo: &fakeRepo{snap: snap}, Wallet: &fakeWallet{}}

	_, err := s.SettleMarket(context.Background(), SettleRequest{MarketID: "m1", Method: jobs.MethodAutomatic})
	assert.ErrorIs(t, err, ErrMarketAlreadySettled)
}

func TestSettleMarketTieVoidsAndRefunds(t *testing.T) {
	snap := snapshotFixture()
	snap.Outcomes[1].PoolCents = 1000
	repo := &fakeRepo{snap: snap}
	wallet := &fakeWallet{}
	ev := &fakeEvents{}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: wallet, Events: ev, RakeBps: 500}

	res, err := s.SettleMarket(context.Background(), SettleRequest{MarketID: "m1", Method: jobs.MethodAutomatic})
	require.NoError(t, err)

	assert.Equal(t, "VOIDED", res.Status)
	assert.Empty(t, res.WinningOutcomeID)
	assert.ElementsMatch(t, []string{"b1", "b2"}, wallet.refunds)
	assert.Empty(t, wallet.credits)
	assert.Equal(t, "m1", repo.voided)

	require.Len(t, ev.published, 1)
	assert.Equal(t, "VOIDED", ev.published[0].Status)
}

func TestSettleMarketCreditFailureAborts(t *testing.T) {
	repo := &fakeRepo{snap: snapshotFixture()}
	wallet := &fakeWallet{creditErr: errors.New("wallet down")}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: wallet, RakeBps: 500}

	_, err := s.SettleMarket(context.Background(), SettleRequest{MarketID: "m1", Method: jobs.MethodAutomatic})
	require.Error(t, err)

	// nada persistido; o job pode ser reprocessado com segurança
	assert.Nil(t, repo.settled)
	assert.Empty(t, repo.voided)
}

func TestCloseMarket(t *testing.T) {
	repo := &fakeRepo{}
	s := &Settler{Log: zap.NewNop(), Repo: repo, Wallet: &fakeWallet{}}

	require.NoError(t, s.CloseMarket(context.Background(), "m1", "expired"))
	assert.Equal(t, "m1", repo.closed)
}
