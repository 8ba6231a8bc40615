package reducer

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// maxEdgeWidth caps widths so huge weights stay representable.
const maxEdgeWidth = math.MaxInt32

// edgeWidth maps a weight onto a drawable width in [1, maxEdgeWidth].
func edgeWidth(weight float64) int {
	w := math.Round(math.Max(1, weight*2))
	if w > maxEdgeWidth {
		w = maxEdgeWidth
	}
	return int(w)
}

// formatScore renders a score with exactly three decimals.
// Exact ties round away from zero; strconv alone would round them to even.
func formatScore(score float64) string {
	if score == 0 {
		// Negative zero prints as 0.000.
		score = 0
	}
	label := strconv.FormatFloat(score, 'f', 3, 64)

	scaled := new(big.Float).SetPrec(256).SetFloat64(score)
	scaled.Mul(scaled, big.NewFloat(10000))
	if !scaled.IsInt() {
		return label
	}
	n, _ := scaled.Int(nil)
	abs := new(big.Int).Abs(n)
	if new(big.Int).Mod(abs, big.NewInt(10)).Int64() != 5 {
		return label
	}

	abs.Add(abs, big.NewInt(5))
	abs.Div(abs, big.NewInt(10))
	whole, frac := new(big.Int).DivMod(abs, big.NewInt(1000), new(big.Int))

	sign := ""
	if score < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%03d", sign, whole.String(), frac.Int64())
}
