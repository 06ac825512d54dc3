package settler

// Payout é o crédito devido a uma aposta vencedora.
type Payout struct {
	BetID       string
	UserID      string
	AmountCents int64 // stake + ganho proporcional
}

// Plan é o resultado do cálculo parimutuel de um mercado.
type Plan struct {
	Payouts      []Payout
	PaidOutCents int64
	RakeCents    int64 // rake + sobras de arredondamento, retidos pela casa
}

// ResolveAutomatic escolhe o outcome com maior pool apostado.
// Empate no topo ou pool total zerado anulam o mercado.
func ResolveAutomatic(outcomes []OutcomePool) (winnerID string, voided bool) {
	var best int64 = -1
	tied := false
	for _, o := range outcomes {
		switch {
		case o.PoolCents > best:
			best = o.PoolCents
			winnerID = o.OutcomeID
			tied = false
		case o.PoolCents == best:
			tied = true
		}
	}
	if best <= 0 || tied {
		return "", true
	}
	return winnerID, false
}

// ComputePayouts distribui o pool perdedor entre as apostas vencedoras,
// proporcional ao stake, descontado o rake em basis points.
// Aritmética inteira em centavos; sobras de arredondamento ficam no rake.
func ComputePayouts(bets []BetStake, winnerID string, rakeBps int) Plan {
	var winningPool, losingPool int64
	for _, b := range bets {
		if b.OutcomeID == winnerID {
			winningPool += b.AmountCents
		} else {
			losingPool += b.AmountCents
		}
	}

	rake := losingPool * int64(rakeBps) / 10000
	net := losingPool - rake

	var plan Plan
	var distributed int64
	for _, b := range bets {
		if b.OutcomeID != winnerID {
			continue
		}
		win := int64(0)
		if winningPool > 0 {
			win = b.AmountCents * net / winningPool
		}
		distributed += win
		plan.Payouts = append(plan.Payouts, Payout{
			BetID:       b.BetID,
			UserID:      b.UserID,
			AmountCents: b.AmountCents + win,
		})
	}

	plan.PaidOutCents = winningPool + distributed
	plan.RakeCents = losingPool - distributed
	return plan
}
