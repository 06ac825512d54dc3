package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrifted(t *testing.T) {
	assert.False(t, Drifted(0.50, 0.50))
	assert.False(t, Drifted(0.50, 0.52)) // exatamente na tolerância
	assert.False(t, Drifted(0.52, 0.50))
	assert.False(t, Drifted(0.33, 0.35))
	assert.False(t, Drifted(0.01, 0.03))

	assert.True(t, Drifted(0.50, 0.53))
	assert.True(t, Drifted(0.53, 0.50))
	assert.True(t, Drifted(0.10, 0.90))
}
