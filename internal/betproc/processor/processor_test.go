package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/betproc/repo"
	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

type fakeRepo struct {
	acceptErr error
	accepted  []string
	rejected  []string
	prices    []events.OutcomePrice
	version   int64
}

func (f *fakeRepo) AcceptBet(ctx context.Context, betID string) ([]events.OutcomePrice, int64, error) {
	if f.acceptErr != nil {
		return nil, 0, f.acceptErr
	}
	f.accepted = append(f.accepted, betID)
	return f.prices, f.version, nil
}

func (f *fakeRepo) RejectBet(ctx context.Context, betID, reason string) error {
	f.rejected = append(f.rejected, betID)
	return nil
}

type fakeWallet struct {
	commitErr error
	commits   []string
	refunds   []string
}

func (f *fakeWallet) Commit(ctx context.Context, userID, externalRef string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, externalRef)
	return nil
}

func (f *fakeWallet) Refund(ctx context.Context, userID, externalRef string) error {
	f.refunds = append(f.refunds, externalRef)
	return nil
}

type fakeCache struct {
	sets []events.PriceUpdate
	err  error
}

func (f *fakeCache) SetCurrent(ctx context.Context, u events.PriceUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.sets = append(f.sets, u)
	return nil
}

type fakeBroadcaster struct {
	published [][]byte
	channel   string
}

func (f *fakeBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	f.channel = channel
	f.published = append(f.published, payload)
	return nil
}

func newProcessor() (*Processor, *fakeRepo, *fakeWallet, *fakeCache, *fakeBroadcaster) {
	r := &fakeRepo{
		prices: []events.OutcomePrice{
			{OutcomeID: "o1", Label: "UP", PoolCents: 1500, ImpliedPrice: 0.75},
			{OutcomeID: "o2", Label: "DOWN", PoolCents: 500, ImpliedPrice: 0.25},
		},
		version: 7,
	}
	w := &fakeWallet{}
	c := &fakeCache{}
	b := &fakeBroadcaster{}
	p := &Processor{
		Log:       zap.NewNop(),
		Repo:      r,
		Wallet:    w,
		Cache:     c,
		Broadcast: b,
		Channel:   "price_updates_broadcast",
	}
	return p, r, w, c, b
}

func betJob() jobs.NewBetJob {
	return jobs.NewBetJob{BetID: "b1", MarketID: "m1", OutcomeID: "o1", UserID: "u1", AmountCents: 1000}
}

func TestProcessNewBet(t *testing.T) {
	p, r, w, c, b := newProcessor()

	require.NoError(t, p.ProcessNewBet(context.Background(), betJob()))

	assert.Equal(t, []string{"b1"}, w.commits)
	assert.Equal(t, []string{"b1"}, r.accepted)
	assert.Empty(t, r.rejected)

	require.Len(t, c.sets, 1)
	assert.Equal(t, "m1", c.sets[0].MarketID)
	assert.Equal(t, int64(7), c.sets[0].Version)
	assert.Equal(t, "bet-processing-worker", c.sets[0].Source)

	require.Len(t, b.published, 1)
	assert.Equal(t, "price_updates_broadcast", b.channel)

	var msg struct {
		MarketID string          `json:"marketId"`
		Payload  json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(b.published[0], &msg))
	assert.Equal(t, "m1", msg.MarketID)
}

func TestProcessNewBetCommitFailureRejects(t *testing.T) {
	p, r, w, _, _ := newProcessor()
	w.commitErr = errors.New("insufficient reservation")

	err := p.ProcessNewBet(context.Background(), betJob())
	require.Error(t, err)

	assert.Equal(t, []string{"b1"}, r.rejected)
	assert.Empty(t, r.accepted)
	assert.Empty(t, w.refunds)
}

func TestProcessNewBetAcceptFailureRefunds(t *testing.T) {
	p, r, w, _, _ := newProcessor()
	r.acceptErr = errors.New("pg down")

	err := p.ProcessNewBet(context.Background(), betJob())
	require.Error(t, err)

	// a reserva já foi committed; o valor volta antes de rejeitar
	assert.Equal(t, []string{"b1"}, w.refunds)
	assert.Equal(t, []string{"b1"}, r.rejected)
}

func TestProcessNewBetMarketClosedRefundsWithoutRetry(t *testing.T) {
	p, r, w, c, b := newProcessor()
	r.acceptErr = repo.ErrMarketNotOpen

	// mercado fechou entre a colocação e o processamento:
	// estorna a reserva, rejeita a aposta e encerra o job sem erro
	require.NoError(t, p.ProcessNewBet(context.Background(), betJob()))

	assert.Equal(t, []string{"b1"}, w.refunds)
	assert.Equal(t, []string{"b1"}, r.rejected)
	assert.Empty(t, r.accepted)
	assert.Empty(t, c.sets)
	assert.Empty(t, b.published)
}

func TestProcessNewBetRedeliveryIsNoop(t *testing.T) {
	p, r, _, c, b := newProcessor()
	r.acceptErr = repo.ErrAlreadyProcessed

	require.NoError(t, p.ProcessNewBet(context.Background(), betJob()))

	assert.Empty(t, r.rejected)
	assert.Empty(t, c.sets)
	assert.Empty(t, b.published)
}

func TestProcessNewBetCacheFailureDoesNotBlockBroadcast(t *testing.T) {
	p, _, _, c, b := newProcessor()
	c.err = errors.New("redis down")

	require.NoError(t, p.ProcessNewBet(context.Background(), betJob()))
	assert.Len(t, b.published, 1)
}
