package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsAreUsable(t *testing.T) {
	opts := DefaultOptions()
	assert.Greater(t, opts.PoolSize, 0)
	assert.Greater(t, opts.ReplacerK, 0)
}
