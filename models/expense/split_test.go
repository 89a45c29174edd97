package expense

import (
	"errors"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func people(ids ...string) []types.Participant {
	out := make([]types.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.Participant{UserID: id})
	}
	return out
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestCalculateSplit_EqualRemainderGoesToFirst(t *testing.T) {
	got, err := CalculateSplit(dec("100"), types.SplitMethodEqual, people("a", "b", "c"))
	require.NoError(t, err)

	assertAmount(t, "33.34", got[0].Amount)
	assertAmount(t, "33.33", got[1].Amount)
	assertAmount(t, "33.33", got[2].Amount)
}

func TestCalculateSplit_EqualSumsToTotal(t *testing.T) {
	totals := []string{"0.01", "0.02", "1", "9.99", "10", "10.01", "99.99", "100", "123.45", "1000.03"}
	for _, total := range totals {
		for n := 1; n <= 9; n++ {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = string(rune('a' + i))
			}

			got, err := CalculateSplit(dec(total), types.SplitMethodEqual, people(ids...))
			require.NoError(t, err, "total %s n %d", total, n)

			assert.True(t, SumAmounts(got).Sub(dec(total)).Abs().LessThanOrEqual(Tolerance),
				"total %s n %d sums to %s", total, n, SumAmounts(got))

			share := dec(total).Div(decimal.NewFromInt(int64(n))).Round(2)
			for i := 1; i < n; i++ {
				assert.True(t, share.Equal(got[i].Amount), "only the first participant absorbs the remainder")
			}
		}
	}
}

func TestCalculateSplit_EqualDoesNotMutateInput(t *testing.T) {
	in := people("a", "b")
	_, err := CalculateSplit(dec("10"), types.SplitMethodEqual, in)
	require.NoError(t, err)
	assert.True(t, in[0].Amount.IsZero())
}

func TestCalculateSplit_Exact(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Amount: dec("40")},
		{UserID: "b", Amount: dec("40")},
		{UserID: "c", Amount: dec("20")},
	}
	got, err := CalculateSplit(dec("100"), types.SplitMethodExact, in)
	require.NoError(t, err)
	assertAmount(t, "20", got[2].Amount)
}

func TestCalculateSplit_ExactMismatch(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Amount: dec("40")},
		{UserID: "b", Amount: dec("40")},
		{UserID: "c", Amount: dec("10")},
	}
	_, err := CalculateSplit(dec("100"), types.SplitMethodExact, in)
	assert.True(t, errors.Is(err, ErrAmountMismatch))
}

func TestCalculateSplit_ExactWithinTolerance(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Amount: dec("50")},
		{UserID: "b", Amount: dec("49.99")},
	}
	_, err := CalculateSplit(dec("100"), types.SplitMethodExact, in)
	assert.NoError(t, err)
}

func TestCalculateSplit_ExactNegative(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Amount: dec("110")},
		{UserID: "b", Amount: dec("-10")},
	}
	_, err := CalculateSplit(dec("100"), types.SplitMethodExact, in)
	assert.True(t, errors.Is(err, ErrNegativeAmount))
}

func TestCalculateSplit_Percentage(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Percentage: decPtr("50")},
		{UserID: "b", Percentage: decPtr("30")},
		{UserID: "c", Percentage: decPtr("20")},
	}
	got, err := CalculateSplit(dec("80"), types.SplitMethodPercentage, in)
	require.NoError(t, err)

	assertAmount(t, "40", got[0].Amount)
	assertAmount(t, "24", got[1].Amount)
	assertAmount(t, "16", got[2].Amount)
}

func TestCalculateSplit_PercentageNoRemainderCorrection(t *testing.T) {
	in := []types.Participant{
		{UserID: "a", Percentage: decPtr("33.33")},
		{UserID: "b", Percentage: decPtr("33.33")},
		{UserID: "c", Percentage: decPtr("33.34")},
	}
	got, err := CalculateSplit(dec("10"), types.SplitMethodPercentage, in)
	require.NoError(t, err)

	for _, p := range got {
		assertAmount(t, "3.33", p.Amount)
	}
	assertAmount(t, "9.99", SumAmounts(got))
}

func percentageInputs(pcts ...string) []types.Participant {
	in := make([]types.Participant, len(pcts))
	for i, pct := range pcts {
		in[i] = types.Participant{UserID: string(rune('a' + i)), Percentage: decPtr(pct)}
	}
	return in
}

func TestCalculateSplit_PercentageKeepsResidualCent(t *testing.T) {
	got, err := CalculateSplit(dec("10"), types.SplitMethodPercentage, percentageInputs("33.33", "33.33", "33.34"))
	require.NoError(t, err)

	// no remainder correction: 3.333, 3.333 and 3.334 all round to 3.33
	for _, p := range got {
		assertAmount(t, "3.33", p.Amount)
	}
	drift := dec("10").Sub(SumAmounts(got)).Abs()
	assertAmount(t, "0.01", drift)
	assert.True(t, drift.LessThanOrEqual(dec("0.02")))
}

func TestCalculateSplit_PercentageResidueBeyondCentIsMismatch(t *testing.T) {
	// 0.025 rounds up to 0.03 four times, 0.12 against 0.10
	_, err := CalculateSplit(dec("0.10"), types.SplitMethodPercentage, percentageInputs("25", "25", "25", "25"))
	assert.True(t, errors.Is(err, ErrAmountMismatch), "got %v", err)
}

func TestCalculateSplit_InvalidPercentage(t *testing.T) {
	tests := []struct {
		name string
		pcts []*decimal.Decimal
	}{
		{"sum below 100", []*decimal.Decimal{decPtr("50"), decPtr("40")}},
		{"sum above 100", []*decimal.Decimal{decPtr("60"), decPtr("50")}},
		{"missing percentage", []*decimal.Decimal{decPtr("100"), nil, decPtr("0.5")}},
		{"negative", []*decimal.Decimal{decPtr("120"), decPtr("-20")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]types.Participant, len(tt.pcts))
			for i, pct := range tt.pcts {
				in[i] = types.Participant{UserID: string(rune('a' + i)), Percentage: pct}
			}
			_, err := CalculateSplit(dec("100"), types.SplitMethodPercentage, in)
			assert.True(t, errors.Is(err, ErrInvalidPercentage))
		})
	}
}

func TestCalculateSplit_InputErrors(t *testing.T) {
	_, err := CalculateSplit(dec("10"), types.SplitMethodEqual, nil)
	assert.True(t, errors.Is(err, ErrNoParticipants))

	_, err = CalculateSplit(dec("10"), types.SplitMethodEqual, people("a", "a"))
	assert.True(t, errors.Is(err, ErrDuplicateParticipant))

	_, err = CalculateSplit(dec("10"), "shares", people("a"))
	assert.True(t, errors.Is(err, ErrUnknownSplitMethod))
}
