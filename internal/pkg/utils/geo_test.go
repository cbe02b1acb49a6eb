package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Avenida Paulista to Praça da Sé, São Paulo: roughly 2.6 km.
	d := CalculateHaversineDistance(-23.5614, -46.6559, -23.5503, -46.6339)
	assert.InDelta(t, 2600, d, 200)

	assert.Zero(t, CalculateHaversineDistance(10, 10, 10, 10))
}

func TestWithinRadiusKm(t *testing.T) {
	assert.True(t, WithinRadiusKm(-23.5614, -46.6559, -23.5503, -46.6339, 5))
	assert.False(t, WithinRadiusKm(-23.5614, -46.6559, -23.5503, -46.6339, 1))
}
