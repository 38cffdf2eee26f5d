package sim

import (
	"fmt"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Step is a single simulation step
type Step struct {
	// T is the step timestamp
	T float64
	// U is the control input applied to reach this step
	U mat.Vector
	// X is the true system state
	X mat.Vector
	// Y is the true system output
	Y mat.Vector
	// Z is the measured system output: Y perturbed by measurement noise
	Z mat.Vector
}

// Simulate propagates system d from state x0 at time t0 for the given number of steps of
// length dt applying constant control input u and returns the simulated steps.
// q and r are process and measurement noise; either can be nil.
// It returns error if steps is non-positive or if the system can not be propagated or observed.
func Simulate(d *Discrete, x0, u mat.Vector, t0, dt float64, steps int, q, r filter.Noise) ([]Step, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: invalid number of steps: %d", filter.ErrInvalidArgument, steps)
	}

	res := make([]Step, steps)
	x := x0
	for i := 0; i < steps; i++ {
		var wd, wn mat.Vector
		if q != nil {
			wd = q.Sample()
		}
		if r != nil {
			wn = r.Sample()
		}

		var err error
		x, err = d.Propagate(x, u, wd)
		if err != nil {
			return nil, fmt.Errorf("step %d: propagation failed: %w", i, err)
		}

		y, err := d.Observe(x, u, nil)
		if err != nil {
			return nil, fmt.Errorf("step %d: observation failed: %w", i, err)
		}

		zv := mat.VecDenseCopyOf(y)
		if wn != nil && wn.Len() == zv.Len() {
			zv.AddVec(zv, wn)
		}

		res[i] = Step{
			T: t0 + float64(i+1)*dt,
			U: u,
			X: x,
			Y: y,
			Z: zv,
		}
	}

	return res, nil
}
