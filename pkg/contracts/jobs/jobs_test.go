package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := Encode(ProcessMarketSettlement, SettlementJob{MarketID: "m1", Reason: "ended"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, "process-market-settlement", env.Name)

	var job SettlementJob
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, "m1", job.MarketID)
	assert.Equal(t, "ended", job.Reason)
}

func TestSettlementMethodDefault(t *testing.T) {
	assert.Equal(t, MethodAutomatic, SettlementJob{}.Method())
	assert.Equal(t, MethodManual, SettlementJob{SettlementMethod: MethodManual}.Method())

	// payload sem o campo também cai no default
	var job SettlementJob
	require.NoError(t, json.Unmarshal([]byte(`{"marketId":"m1"}`), &job))
	assert.Equal(t, MethodAutomatic, job.Method())
}
