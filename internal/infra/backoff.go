package infra

import (
	"math/rand"
	"time"
)

const (
	backoffBase   = 1 * time.Second
	backoffMax    = 60 * time.Second
	backoffJitter = 0.2
)

// CalculateBackoff returns the reconnect delay for the given retry count:
// exponential growth from 1s capped at 60s, with ±20% jitter so that a
// fleet of reconnecting clients does not thunder in lockstep.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}

	wait := backoffBase
	for i := 0; i < retry; i++ {
		wait *= 2
		if wait >= backoffMax {
			wait = backoffMax
			break
		}
	}

	delta := float64(wait) * backoffJitter
	return wait - time.Duration(delta) + time.Duration(rand.Float64()*2*delta)
}
