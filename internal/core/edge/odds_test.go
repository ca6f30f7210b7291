package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.4, ImpliedProbability(150), 1e-9)
	assert.InDelta(t, 2.0/3.0, ImpliedProbability(-200), 1e-9)
	assert.InDelta(t, 0.5, ImpliedProbability(100), 1e-9)
	assert.InDelta(t, 120.0/220.0, ImpliedProbability(-120), 1e-9)
}

func TestWinUnits(t *testing.T) {
	assert.InDelta(t, 1.5, WinUnits(150), 1e-9)
	assert.InDelta(t, 0.5, WinUnits(-200), 1e-9)
	assert.InDelta(t, 1.0, WinUnits(100), 1e-9)
}

func TestParseAmericanOdds(t *testing.T) {
	v := ParseAmericanOdds("-154")
	require.NotNil(t, v)
	assert.Equal(t, -154, *v)

	v = ParseAmericanOdds("+120")
	require.NotNil(t, v)
	assert.Equal(t, 120, *v)

	v = ParseAmericanOdds(" 150 ")
	require.NotNil(t, v)
	assert.Equal(t, 150, *v)

	assert.Nil(t, ParseAmericanOdds(""))
	assert.Nil(t, ParseAmericanOdds("EVEN"))
	assert.Nil(t, ParseAmericanOdds("0"))
}

func TestFormatAmericanOdds(t *testing.T) {
	pos, neg := 120, -154
	assert.Equal(t, "+120", FormatAmericanOdds(&pos))
	assert.Equal(t, "-154", FormatAmericanOdds(&neg))
	assert.Equal(t, "-", FormatAmericanOdds(nil))
}
