package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

type fakeRepo struct {
	expired    []string
	pending    []string
	expiredErr error
}

func (f *fakeRepo) ExpiredOpenMarkets(ctx context.Context, now time.Time) ([]string, error) {
	return f.expired, f.expiredErr
}

func (f *fakeRepo) ClosedAutomaticMarkets(ctx context.Context) ([]string, error) {
	return f.pending, nil
}

type fakePublisher struct {
	closes      []jobs.CloseJob
	settlements []jobs.SettlementJob
	closeErr    error
}

func (f *fakePublisher) PublishClose(ctx context.Context, j jobs.CloseJob) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closes = append(f.closes, j)
	return nil
}

func (f *fakePublisher) PublishSettlement(ctx context.Context, j jobs.SettlementJob) error {
	f.settlements = append(f.settlements, j)
	return nil
}

func TestTickEnqueuesJobs(t *testing.T) {
	repo := &fakeRepo{expired: []string{"m1", "m2"}, pending: []string{"m3"}}
	publ := &fakePublisher{}

	var enqueued []string
	s := &Scheduler{
		Log:        zap.NewNop(),
		Repo:       repo,
		Publ:       publ,
		Interval:   time.Second,
		OnEnqueued: func(job string) { enqueued = append(enqueued, job) },
	}
	s.Tick(context.Background())

	assert.Len(t, publ.closes, 2)
	assert.Equal(t, "m1", publ.closes[0].MarketID)

	assert.Len(t, publ.settlements, 1)
	assert.Equal(t, "m3", publ.settlements[0].MarketID)
	assert.Equal(t, jobs.MethodAutomatic, publ.settlements[0].SettlementMethod)

	assert.Equal(t, []string{jobs.AutoCloseMarket, jobs.AutoCloseMarket, jobs.ProcessMarketSettlement}, enqueued)
}

func TestTickScanErrorDoesNotStopSettlements(t *testing.T) {
	repo := &fakeRepo{expiredErr: errors.New("pg down"), pending: []string{"m3"}}
	publ := &fakePublisher{}
	s := &Scheduler{Log: zap.NewNop(), Repo: repo, Publ: publ, Interval: time.Second}

	s.Tick(context.Background())

	assert.Empty(t, publ.closes)
	assert.Len(t, publ.settlements, 1)
}

func TestTickPublishErrorSkipsCallback(t *testing.T) {
	repo := &fakeRepo{expired: []string{"m1"}}
	publ := &fakePublisher{closeErr: errors.New("kafka down")}

	called := false
	s := &Scheduler{
		Log:        zap.NewNop(),
		Repo:       repo,
		Publ:       publ,
		Interval:   time.Second,
		OnEnqueued: func(string) { called = true },
	}
	s.Tick(context.Background())

	assert.False(t, called)
}
