package degrade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttempt(t *testing.T) {
	t.Run("success keeps value", func(t *testing.T) {
		res := Attempt(func() (string, error) { return "Jita", nil }, func(error) string { return "fallback" })
		assert.Equal(t, "Jita", res.Value)
		assert.False(t, res.Degraded)
		assert.NoError(t, res.Err)
	})

	t.Run("error uses fallback", func(t *testing.T) {
		boom := errors.New("boom")
		var seen error
		res := Attempt(func() (string, error) { return "", boom }, func(err error) string {
			seen = err
			return "fallback"
		})
		assert.Equal(t, "fallback", res.Value)
		assert.True(t, res.Degraded)
		assert.ErrorIs(t, res.Err, boom)
		assert.ErrorIs(t, seen, boom)
	})

	t.Run("panic uses fallback", func(t *testing.T) {
		res := Attempt(func() (bool, error) { panic("nil map") }, func(error) bool { return false })
		assert.False(t, res.Value)
		assert.True(t, res.Degraded)
		var pe *PanicError
		assert.ErrorAs(t, res.Err, &pe)
		assert.Equal(t, "nil map", pe.Value)
	})
}
