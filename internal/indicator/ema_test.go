package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_InsufficientData(t *testing.T) {
	_, err := EMA(candlesFrom(1, 2), 3)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestEMA_SeedIsSimpleMean(t *testing.T) {
	v, err := EMA(candlesFrom(10, 20, 30), 3)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestEMA_Recurrence(t *testing.T) {
	// period 3, multiplier 0.5:
	// seed = (10+20+30)/3 = 20
	// step = (40-20)*0.5 + 20 = 30
	// step = (40-30)*0.5 + 30 = 35
	v, err := EMA(candlesFrom(10, 20, 30, 40, 40), 3)
	require.NoError(t, err)
	assert.Equal(t, 35.0, v)
}

func TestEMA_RoundedToCents(t *testing.T) {
	// seed = (1+2)/2 = 1.5, step = (2-1.5)*(2/3) + 1.5 = 1.8333...
	v, err := EMA(candlesFrom(1, 2, 2), 2)
	require.NoError(t, err)
	assert.Equal(t, 1.83, v)
}
