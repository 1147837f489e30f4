package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zkpauth/zkp/num"
)

func TestSmallPrimesProduct(t *testing.T) {
	product := uint64(1)
	for _, p := range SmallPrimes {
		product *= uint64(p)
	}
	assert.Equal(t, SmallPrimesProduct.Uint64(), product)
}

func TestHasSmallFactor(t *testing.T) {
	assert.False(t, HasSmallFactor(num.NewInt(23)))
	assert.False(t, HasSmallFactor(num.NewInt(1000003)))
	assert.True(t, HasSmallFactor(num.NewInt(21)))
	assert.True(t, HasSmallFactor(num.NewInt(53*59)))
	assert.False(t, HasSmallFactor(num.NewInt(59*61)))
}
