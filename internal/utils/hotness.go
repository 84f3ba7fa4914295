package utils

import (
	"math"
	"time"
)

type HotConfig struct {
	Gravity        float64 // time decay exponent
	WeightComment  float64
	WeightUpvote   float64
	WeightDownvote float64
	WeightView     float64
	ScaleFactor    float64
}

var DefaultHotConfig = HotConfig{
	Gravity:        1.5,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	WeightView:     0.01, // views dwarf everything else, keep them tiny
	ScaleFactor:    100.0,
}

// HotScore ranks a post for listings: log-smoothed weighted engagement
// over a time-decay denominator. Falls toward 0 as the post ages.
func HotScore(createdAt time.Time, up, down, comments, views int) float64 {
	hours := time.Since(createdAt).Hours()

	weightedSum := (float64(up) * DefaultHotConfig.WeightUpvote) +
		(float64(comments) * DefaultHotConfig.WeightComment) +
		(float64(views) * DefaultHotConfig.WeightView) -
		(float64(down) * DefaultHotConfig.WeightDownvote)

	if weightedSum < 0 {
		weightedSum = 0 // log is undefined below zero
	}

	logScore := math.Log10(weightedSum + 1)

	numerator := logScore * DefaultHotConfig.ScaleFactor

	decay := math.Pow(hours+2, DefaultHotConfig.Gravity)

	return numerator / decay
}
