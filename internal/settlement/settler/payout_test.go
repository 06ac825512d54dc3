package settler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAutomatic(t *testing.T) {
	t.Run("maior pool vence", func(t *testing.T) {
		winner, voided := ResolveAutomatic([]OutcomePool{
			{OutcomeID: "o1", PoolCents: 1000},
			{OutcomeID: "o2", PoolCents: 3000},
			{OutcomeID: "o3", PoolCents: 2000},
		})
		assert.False(t, voided)
		assert.Equal(t, "o2", winner)
	})

	t.Run("empate no topo anula", func(t *testing.T) {
		winner, voided := ResolveAutomatic([]OutcomePool{
			{OutcomeID: "o1", PoolCents: 3000},
			{OutcomeID: "o2", PoolCents: 3000},
			{OutcomeID: "o3", PoolCents: 100},
		})
		assert.True(t, voided)
		assert.Empty(t, winner)
	})

	t.Run("pool zerado anula", func(t *testing.T) {
		_, voided := ResolveAutomatic([]OutcomePool{
			{OutcomeID: "o1", PoolCents: 0},
			{OutcomeID: "o2", PoolCents: 0},
		})
		assert.True(t, voided)
	})

	t.Run("sem outcomes anula", func(t *testing.T) {
		_, voided := ResolveAutomatic(nil)
		assert.True(t, voided)
	})
}

func TestComputePayouts(t *testing.T) {
	bets := []BetStake{
		{BetID: "b1", UserID: "u1", OutcomeID: "win", AmountCents: 600},
		{BetID: "b2", UserID: "u2", OutcomeID: "win", AmountCents: 400},
		{BetID: "b3", UserID: "u3", OutcomeID: "lose", AmountCents: 2000},
	}

	// pool perdedor 2000, rake 5% = 100, líquido 1900 distribuído pro-rata
	plan := ComputePayouts(bets, "win", 500)

	require.Len(t, plan.Payouts, 2)
	assert.Equal(t, int64(600+1140), plan.Payouts[0].AmountCents) // 600*1900/1000
	assert.Equal(t, int64(400+760), plan.Payouts[1].AmountCents)  // 400*1900/1000
	assert.Equal(t, int64(2900), plan.PaidOutCents)
	assert.Equal(t, int64(100), plan.RakeCents)
}

func TestComputePayoutsRoundingDustGoesToRake(t *testing.T) {
	bets := []BetStake{
		{BetID: "b1", UserID: "u1", OutcomeID: "win", AmountCents: 100},
		{BetID: "b2", UserID: "u2", OutcomeID: "win", AmountCents: 100},
		{BetID: "b3", UserID: "u3", OutcomeID: "win", AmountCents: 100},
		{BetID: "b4", UserID: "u4", OutcomeID: "lose", AmountCents: 100},
	}

	// 100/300 não divide exato: cada vencedor ganha 33, sobra 1 pro rake
	plan := ComputePayouts(bets, "win", 0)

	require.Len(t, plan.Payouts, 3)
	for _, p := range plan.Payouts {
		assert.Equal(t, int64(133), p.AmountCents)
	}
	assert.Equal(t, int64(399), plan.PaidOutCents)
	assert.Equal(t, int64(1), plan.RakeCents)

	// conservação: pool total = pago + rake
	assert.Equal(t, int64(400), plan.PaidOutCents+plan.RakeCents)
}

func TestComputePayoutsNoLosingPool(t *testing.T) {
	bets := []BetStake{
		{BetID: "b1", UserID: "u1", OutcomeID: "win", AmountCents: 500},
	}

	plan := ComputePayouts(bets, "win", 500)

	require.Len(t, plan.Payouts, 1)
	assert.Equal(t, int64(500), plan.Payouts[0].AmountCents) // devolve só o stake
	assert.Equal(t, int64(500), plan.PaidOutCents)
	assert.Zero(t, plan.RakeCents)
}
