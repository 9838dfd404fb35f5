package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

func TestEffectsActivateRefreshes(t *testing.T) {
	var e Effects
	e.Activate(Double, testNow)
	assert.Equal(t, testNow.Add(config.DoubleDuration), e[Double].ExpiresAt)

	later := testNow.Add(4 * time.Second)
	e.Activate(Double, later)
	assert.Len(t, e, 1)
	assert.Equal(t, later.Add(config.DoubleDuration), e[Double].ExpiresAt)
}

func TestEffectsSweepSkipsOneShots(t *testing.T) {
	e := Effects{}
	e.Activate(Magnet, testNow)
	e.Activate(SlowMo, testNow)
	e.Activate(Shield, testNow)

	assert.Empty(t, e.Sweep(testNow.Add(config.SlowMoDuration)))

	expired := e.Sweep(testNow.Add(config.SlowMoDuration + time.Millisecond))
	assert.Equal(t, []PowerUpKind{SlowMo}, expired)

	expired = e.Sweep(testNow.Add(time.Hour))
	assert.Equal(t, []PowerUpKind{Magnet}, expired)
	assert.True(t, e.Active(Shield))
	assert.True(t, e[Shield].OneShot())
}

func TestEffectRemaining(t *testing.T) {
	e := Effects{}
	eff := e.Activate(Magnet, testNow)

	assert.Equal(t, 3*time.Second, eff.Remaining(testNow.Add(5*time.Second)))
	assert.Zero(t, eff.Remaining(testNow.Add(time.Minute)))
	assert.Zero(t, e.Activate(BeadRain, testNow).Remaining(testNow))
}

func TestEffectsCloneIsIndependent(t *testing.T) {
	e := Effects{}
	e.Activate(Shield, testNow)
	c := e.Clone()
	c.Consume(Shield)

	assert.True(t, e.Active(Shield))
	assert.False(t, c.Consume(Shield))
}

func TestTickIntervalAndScore(t *testing.T) {
	mode := mustMode(t, ModeRush)
	e := Effects{}
	assert.Equal(t, config.RushTick, TickInterval(mode, e))
	assert.Equal(t, 1, scoreFor(e))

	e.Activate(SlowMo, testNow)
	e.Activate(Double, testNow)
	assert.Equal(t, config.RushTick*config.SlowMoFactor, TickInterval(mode, e))
	assert.Equal(t, 2, scoreFor(e))
}

func TestPowerUpKindTable(t *testing.T) {
	for _, kind := range AllPowerUps {
		assert.True(t, kind.Valid(), kind)
		assert.NotEmpty(t, kind.Label())
		assert.NotEmpty(t, kind.Emoji())
	}
	assert.Zero(t, Shield.Duration())
	assert.Zero(t, ExtraLife.Duration())
	assert.False(t, PowerUpKind("warp").Valid())
}

func TestCollectExtraLifeStacksLives(t *testing.T) {
	st := State{Effects: Effects{}}
	Collect(&st, ExtraLife, testNow)
	Collect(&st, ExtraLife, testNow)

	assert.Equal(t, 2, st.Lives)
	assert.Len(t, st.Effects, 1)
}
