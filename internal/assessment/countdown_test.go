package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_ExpiresExactlyOnce(t *testing.T) {
	c := NewCountdown(DefaultDuration)
	id := c.Start()

	fired := 0
	for i := 0; i < 1300; i++ {
		if c.Tick(id) {
			fired++
		}
	}

	assert.Equal(t, 1, fired)
	assert.True(t, c.Expired())
	assert.False(t, c.Running())
	assert.Equal(t, time.Duration(0), c.Remaining())
}

func TestCountdown_FiresOnTick1200(t *testing.T) {
	c := NewCountdown(20 * time.Minute)
	id := c.Start()

	for i := 1; i < 1200; i++ {
		assert.False(t, c.Tick(id), "tick %d", i)
	}
	assert.True(t, c.Tick(id))
}

func TestCountdown_StaleTicksIgnored(t *testing.T) {
	c := NewCountdown(10 * time.Second)
	old := c.Start()
	c.Stop()
	fresh := c.Start()

	assert.NotEqual(t, old, fresh)
	assert.False(t, c.Tick(old))
	assert.Equal(t, 10*time.Second, c.Remaining())

	c.Tick(fresh)
	assert.Equal(t, 9*time.Second, c.Remaining())
}

func TestCountdown_StartAfterExpiryIsNoop(t *testing.T) {
	c := NewCountdown(time.Second)
	id := c.Start()
	assert.True(t, c.Tick(id))

	again := c.Start()
	assert.False(t, c.Running())
	assert.False(t, c.Tick(again))
}

func TestCountdown_Urgent(t *testing.T) {
	c := NewCountdown(5*time.Minute + time.Second)
	assert.False(t, c.Urgent())

	id := c.Start()
	c.Tick(id)
	assert.False(t, c.Urgent(), "exactly five minutes left is not urgent")
	c.Tick(id)
	assert.True(t, c.Urgent())
}
