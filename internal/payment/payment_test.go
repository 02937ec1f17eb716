package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedPopup(t *testing.T) {
	fixed := time.Unix(0, 1724900000000000000)
	popup := NewSimulatedPopup(withClock(func() time.Time { return fixed }))

	t.Run("positive amount succeeds with processor reference", func(t *testing.T) {
		var gotRef string
		closed := false
		popup.Open("ada@example.com", 10000, func(ref string) { gotRef = ref }, func() { closed = true })

		assert.Equal(t, "PSK-1724900000000000000", gotRef)
		assert.False(t, closed)
	})

	t.Run("non-positive amount cancels", func(t *testing.T) {
		closed := false
		popup.Open("ada@example.com", 0, func(ref string) {
			t.Errorf("unexpected success with ref %s", ref)
		}, func() { closed = true })

		assert.True(t, closed)
	})

	t.Run("nil callbacks are tolerated", func(t *testing.T) {
		popup.Open("ada@example.com", 500, nil, nil)
		popup.Open("ada@example.com", -1, nil, nil)
	})
}
