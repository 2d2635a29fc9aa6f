package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"dot separator", "150.50", 15050, false},
		{"comma separator", "150,50", 15050, false},
		{"whole number", "200", 20000, false},
		{"single fraction digit", "12.3", 1230, false},
		{"rounds half up", "12.346", 1235, false},
		{"rounds half up at midpoint", "12.345", 1235, false},
		{"rounds down", "12.344", 1234, false},
		{"leading whitespace", "  42,10", 4210, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero with cents", "0,00", 0, true},
		{"negative", "-10", 0, true},
		{"explicit plus", "+10", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignedDecimalToCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"200", 20000, false},
		{"200,00", 20000, false},
		{"0", 0, false},
		{"-50,25", -5025, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSignedDecimalToCents(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150,00", FormatCents(15000))
	assert.Equal(t, "0,05", FormatCents(5))
	assert.Equal(t, "0,00", FormatCents(0))
	assert.Equal(t, "1234,56", FormatCents(123456))
	assert.Equal(t, "-40,10", FormatCents(-4010))
}

func TestFormatLitres(t *testing.T) {
	assert.Equal(t, "12,50", FormatLitres(12.5))
	assert.Equal(t, "3,00", FormatLitres(3))
}

func TestTransactionKindValid(t *testing.T) {
	assert.True(t, KindIncome.Valid())
	assert.True(t, KindExpense.Valid())
	assert.False(t, TransactionKind("transfer").Valid())
	assert.False(t, TransactionKind("").Valid())
}
