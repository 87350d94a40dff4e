package fba

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"nil", nil, 0},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"dash placeholder", "-", 0},
		{"n/a mixed case", "N/A", 0},
		{"null token", "NULL", 0},
		{"undefined token", "undefined", 0},
		{"nan token", "NaN", 0},
		{"infinity string", "inf", 0},
		{"currency with thousands", "$1,234.50", 1234.5},
		{"padded integer", "  12 ", 12},
		{"inner spaces", "1 000", 1000},
		{"negative", "-7.25", -7.25},
		{"garbage", "abc", 0},
		{"trailing garbage", "12units", 0},
		{"int value", 42, 42},
		{"float value", 3.5, 3.5},
		{"NaN float", math.NaN(), 0},
		{"bytes", []byte("8"), 8},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumeric(tt.input))
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, RoundHalfUp(2.5))
	assert.Equal(t, -2, RoundHalfUp(-2.5))
	assert.Equal(t, 33, RoundHalfUp(33.33))
	assert.Equal(t, 0, RoundHalfUp(0.49))
}
