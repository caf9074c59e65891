package simulation

import "time"

// Params are the knobs of the per-tick state machine.
type Params struct {
	Tick time.Duration // simulated time covered by one step

	PDump       float64 // moving -> dumping
	PStart      float64 // idle -> moving
	PFinishDump float64 // dumping -> moving, one trip completed
	POnline     float64 // offline -> idle

	SpeedMinKmh float64
	SpeedMaxKmh float64
}

// DefaultParams returns the reference transition probabilities for the given tick.
func DefaultParams(tick time.Duration) Params {
	return Params{
		Tick:        tick,
		PDump:       0.10,
		PStart:      0.30,
		PFinishDump: 0.40,
		POnline:     0.05,
		SpeedMinKmh: 15,
		SpeedMaxKmh: 40,
	}
}
