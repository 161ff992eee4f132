package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"livejourney/internal/adapter/media"
	"livejourney/internal/config"
	"livejourney/internal/service/ranking"
)

func TestRankingOptions(t *testing.T) {
	resolver := media.NewURLResolver("https://cdn.example.com")
	opts := rankingOptions(config.HotPlaceConfig{
		RadiusMeters:   250,
		DensityWindow:  5 * time.Minute,
		ActivityWindow: 30 * time.Minute,
		InterestWindow: 20 * time.Minute,
		WeightDensity:  0.5,
		WeightActivity: 0.3,
		WeightInterest: 0.2,
	}, resolver)

	assert.Equal(t, 250.0, opts.RadiusMeters)
	assert.Equal(t, 5*time.Minute, opts.DensityWindow)
	assert.Equal(t, 30*time.Minute, opts.ActivityWindow)
	assert.Equal(t, 20*time.Minute, opts.InterestWindow)
	assert.Equal(t, ranking.Weights{Density: 0.5, Activity: 0.3, Interest: 0.2}, opts.Weights)
	assert.Same(t, resolver, opts.Media)
}
