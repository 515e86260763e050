package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := New("error")
	withHint := WithHint(err, "try this fix")

	hints := GetAllHints(withHint)
	require.Len(t, hints, 1)
	assert.Equal(t, "try this fix", hints[0])
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsInvalidArgument(nil))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsAuthFailure(nil))
}

func TestSentinelConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		check   func(error) bool
		message string
	}{
		{"invalid argument", NewInvalidArgumentError("threshold %d out of range", 150), IsInvalidArgument, "threshold 150 out of range"},
		{"not found", NewNotFoundError("no game log for %s", "1850"), IsNotFound, "no game log for 1850"},
		{"timeout", NewTimeoutError("waited %ds", 30), IsTimeout, "waited 30s"},
		{"auth failure", NewAuthFailureError("kaggle rejected credentials"), IsAuthFailure, "kaggle rejected credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, tt.check(tt.err))

			wrapped := Wrap(tt.err, "outer")
			assert.True(t, tt.check(wrapped), "sentinel must survive wrapping")
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	err := NewTimeoutError("slow")
	assert.False(t, IsNotFound(err))
	assert.False(t, IsInvalidArgument(err))
	assert.False(t, Is(err, ErrConflict))
}

func TestErrorChaining(t *testing.T) {
	base := New("base error")

	err := Wrap(base, "layer 1")
	err = WithHint(err, "helpful hint")
	err = WithDetail(err, "detailed info")
	err = Wrap(err, "layer 2")

	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "layer 2")
	assert.Contains(t, err.Error(), "base error")
	assert.Contains(t, GetAllHints(err), "helpful hint")
	assert.Contains(t, GetAllDetails(err), "detailed info")
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to open database")
	fmt.Println(err)
	// Output: failed to open database: connection failed
}
