package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(42), ToInt64(int64(42)))
	assert.Equal(t, int64(42), ToInt64(42))
	assert.Equal(t, int64(42), ToInt64(42.9))
	assert.Equal(t, int64(42), ToInt64("42"))
	assert.Equal(t, int64(0), ToInt64("not a number"))
	assert.Equal(t, int64(0), ToInt64(nil))
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 150.5, ToFloat(150.5))
	assert.Equal(t, 150.0, ToFloat(int64(150)))
	assert.Equal(t, 150.0, ToFloat("150"))
	assert.Equal(t, 0.0, ToFloat(false))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "hello", ToString("hello"))
	assert.Equal(t, "hello", ToString([]byte("hello")))
	assert.Equal(t, "7", ToString(7))

	// Odoo returns false for unset char fields; that is "no value", not "false".
	assert.Equal(t, "", ToString(false))
	assert.Equal(t, "", ToString(nil))
}
