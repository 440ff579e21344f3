package display

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestCoins(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7.9, "7"},
		{1234.7, "1,234"},
		{99_999, "99,999"},
		{100_000, "100.00K"},
		{2.5e6, "2.50M"},
		{1e9, "1.00B"},
		{3.25e12, "3.25T"},
		{-1500, "-1,500"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Default.Coins(tt.in), "Coins(%v)", tt.in)
	}
}

func TestCoins_Locale(t *testing.T) {
	de := New(language.German)
	assert.Equal(t, "12.345", de.Coins(12345))
}

func TestRate(t *testing.T) {
	assert.Equal(t, "0.5/s", Default.Rate(0.5))
	assert.Equal(t, "8/s", Default.Rate(8))
	assert.Equal(t, "1,500/s", Default.Rate(1500))
}

func TestMultiplierAndGold(t *testing.T) {
	assert.Equal(t, "x1.50", Default.Multiplier(1.5))
	assert.Equal(t, "12,000", Default.Gold(12000))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "0s", Duration(0))
	assert.Equal(t, "45s", Duration(45*time.Second))
	assert.Equal(t, "1s", Duration(200*time.Millisecond), "partial seconds round up")
	assert.Equal(t, "2m05s", Duration(125*time.Second))
	assert.Equal(t, "1h02m", Duration(62*time.Minute))
	assert.Equal(t, "5m00s", Seconds(300))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "#####-----", Bar(0.5, 10))
	assert.Equal(t, "----", Bar(-1, 4))
	assert.Equal(t, "####", Bar(2, 4))
	assert.Equal(t, "", Bar(0.5, 0))
}
