package game

import "time"

// ActiveEffect is a collected power-up that is currently in force.
// A zero ExpiresAt marks a one-shot effect that stays until consumed.
type ActiveEffect struct {
	Kind      PowerUpKind `json:"kind"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// OneShot reports whether the effect waits to be consumed rather than expiring
func (e ActiveEffect) OneShot() bool {
	return e.ExpiresAt.IsZero()
}

// Remaining returns the time left on a timed effect
func (e ActiveEffect) Remaining(now time.Time) time.Duration {
	if e.OneShot() {
		return 0
	}
	if left := e.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Effects holds at most one active effect per kind, keyed by kind
type Effects map[PowerUpKind]ActiveEffect

// Active reports whether kind is in force
func (e Effects) Active(kind PowerUpKind) bool {
	_, ok := e[kind]
	return ok
}

// Activate arms kind at now, refreshing the expiry if it is already active
func (e *Effects) Activate(kind PowerUpKind, now time.Time) ActiveEffect {
	if *e == nil {
		*e = make(Effects)
	}
	eff := ActiveEffect{Kind: kind}
	if d := kind.Duration(); d > 0 {
		eff.ExpiresAt = now.Add(d)
	}
	(*e)[kind] = eff
	return eff
}

// Consume removes kind and reports whether it was active
func (e Effects) Consume(kind PowerUpKind) bool {
	if _, ok := e[kind]; !ok {
		return false
	}
	delete(e, kind)
	return true
}

// Sweep drops timed effects whose expiry is before now. One-shot effects
// are left for their consumers.
func (e Effects) Sweep(now time.Time) []PowerUpKind {
	var expired []PowerUpKind
	for _, kind := range AllPowerUps {
		eff, ok := e[kind]
		if !ok || eff.OneShot() {
			continue
		}
		if now.After(eff.ExpiresAt) {
			delete(e, kind)
			expired = append(expired, kind)
		}
	}
	return expired
}

// List returns the active effects in table order
func (e Effects) List() []ActiveEffect {
	out := make([]ActiveEffect, 0, len(e))
	for _, kind := range AllPowerUps {
		if eff, ok := e[kind]; ok {
			out = append(out, eff)
		}
	}
	return out
}

// Clone copies the set
func (e Effects) Clone() Effects {
	out := make(Effects, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
