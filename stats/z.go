package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	zValue := dist.Quantile(area)
	return zValue
}

// ScoreRate is the match score of one side, counting a draw as half a win,
// with the half-width of its normal-approximation confidence interval.
func ScoreRate(wins, draws float64, games int, confidence float64) (rate, halfWidth float64) {
	if games == 0 {
		return 0, 0
	}
	n := float64(games)
	rate = (wins + draws/2) / n
	halfWidth = ZVal(confidence) * math.Sqrt(rate*(1-rate)/n)
	return rate, halfWidth
}
