package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRecommendOptions(t *testing.T) {
	opts := DefaultRecommendOptions()

	assert.Equal(t, 5, opts.K)
	assert.Equal(t, 3, opts.MaxResults)
}

func TestRecommendOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       RecommendOptions
		expected RecommendOptions
	}{
		{"zero value", RecommendOptions{}, RecommendOptions{K: 5, MaxResults: 3}},
		{"negative values", RecommendOptions{K: -1, MaxResults: -2}, RecommendOptions{K: 5, MaxResults: 3}},
		{"explicit kept", RecommendOptions{K: 10, MaxResults: 1}, RecommendOptions{K: 10, MaxResults: 1}},
		{"partial", RecommendOptions{K: 7}, RecommendOptions{K: 7, MaxResults: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.WithDefaults())
		})
	}
}
