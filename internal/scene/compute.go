package scene

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// ComputePass writes one position per instance into a shared buffer, split
// across worker goroutines the way a compute dispatch splits work groups.
type ComputePass struct {
	workers   int
	amplitude float64
	base      []Vec3
}

// NewComputePass prepares a pass for instances laid out on a grid
func NewComputePass(instances int, spacing float64, workers int) *ComputePass {
	if workers < 1 {
		workers = 1
	}
	return &ComputePass{
		workers:   workers,
		amplitude: spacing / 2,
		base:      GridOffsets(instances, spacing),
	}
}

// Instances returns the buffer length Run expects
func (c *ComputePass) Instances() int {
	return len(c.base)
}

// Run fills out with the positions at time t and returns how long the pass
// took. Each worker owns a disjoint range of out.
func (c *ComputePass) Run(ctx context.Context, t float64, out []Vec3) (time.Duration, error) {
	if len(out) != len(c.base) {
		return 0, fmt.Errorf("compute: buffer holds %d positions, want %d", len(out), len(c.base))
	}
	start := time.Now()

	chunk := (len(out) + c.workers - 1) / c.workers
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(out); lo += chunk {
		hi := min(lo+chunk, len(out))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = c.position(i, t)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// position is the per-invocation kernel: a radial wave over the grid
func (c *ComputePass) position(i int, t float64) Vec3 {
	p := c.base[i]
	d := math.Hypot(p.X, p.Z)
	p.Y = c.amplitude * math.Sin(2*t-d*0.6)
	return p
}
