package scene

import (
	"context"
	"math"
	"time"

	"glsandbox/internal/domain"
)

const (
	nearPlane = 0.1
	farPlane  = 100.0
)

// Segment is one projected edge in normalized device coordinates
type Segment struct {
	A, B Vec2
}

// Frame is everything a rasterizer needs to draw one frame
type Frame struct {
	Segments []Segment
	Stats    domain.FrameStats
}

// Camera orbits the origin
type Camera struct {
	Yaw   float64 // radians
	Pitch float64 // radians, clamped to +-1.4
}

// Orbit adjusts yaw and pitch, keeping pitch away from the poles
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-1.4, math.Min(1.4, c.Pitch+dPitch))
}

// Options configures a Scene
type Options struct {
	Instances      int
	Spacing        float64
	ComputeWorkers int
	FOV            float64
}

// Scene builds frames for every draw mode
type Scene struct {
	Camera Camera

	fov       float64
	triangle  Mesh
	cube      Mesh
	offsets   []Vec3
	compute   *ComputePass
	positions []Vec3
	extent    float64
	frame     uint64
}

// New creates a scene
func New(opts Options) *Scene {
	if opts.FOV <= 0 {
		opts.FOV = 60
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 2.5
	}
	compute := NewComputePass(opts.Instances, opts.Spacing, opts.ComputeWorkers)
	return &Scene{
		Camera:    Camera{Pitch: 0.35},
		fov:       opts.FOV,
		triangle:  Triangle(),
		cube:      Cube(),
		offsets:   GridOffsets(opts.Instances, opts.Spacing),
		compute:   compute,
		positions: make([]Vec3, compute.Instances()),
		extent:    float64(gridSide(max(opts.Instances, 1))) * opts.Spacing,
	}
}

// Build produces the frame for mode at time t (seconds). aspect is the
// view width divided by its height.
func (s *Scene) Build(ctx context.Context, mode domain.DrawMode, t, aspect float64) (Frame, error) {
	start := time.Now()
	s.frame++

	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}

	stats := domain.FrameStats{Frame: s.frame, Mode: mode}
	var (
		mesh      Mesh
		instances []Vec3
		distance  = 2.2
	)

	switch mode {
	case domain.DrawTriangle:
		mesh = s.triangle
		instances = []Vec3{{}}
	case domain.DrawCube:
		mesh = s.cube
		instances = []Vec3{{}}
	case domain.DrawInstanced:
		mesh = s.cube
		instances = s.offsets
		distance = s.extent*0.9 + 3
	case domain.DrawCompute:
		mesh = s.cube
		elapsed, err := s.compute.Run(ctx, t, s.positions)
		if err != nil {
			return Frame{}, err
		}
		stats.ComputeDuration = elapsed
		instances = s.positions
		distance = s.extent*0.9 + 3
	default:
		return Frame{}, domain.ErrUnknownMode
	}

	viewProj := s.viewProjection(distance, aspect)
	spin := RotateY(t * 0.8)
	if mode == domain.DrawTriangle {
		spin = Identity()
	}

	segments := make([]Segment, 0, len(instances)*len(mesh.Edges))
	clip := make([][4]float64, len(mesh.Vertices))
	for _, offset := range instances {
		mvp := viewProj.Mul(Translate(offset)).Mul(spin)
		for i, v := range mesh.Vertices {
			x, y, z, w := mvp.Transform(v)
			clip[i] = [4]float64{x, y, z, w}
		}
		for _, e := range mesh.Edges {
			a, b := clip[e[0]], clip[e[1]]
			// both ends must be in front of the near plane
			if a[3] < nearPlane || b[3] < nearPlane {
				continue
			}
			segments = append(segments, Segment{
				A: Vec2{a[0] / a[3], a[1] / a[3]},
				B: Vec2{b[0] / b[3], b[1] / b[3]},
			})
		}
	}

	stats.Instances = len(instances)
	stats.Vertices = len(instances) * len(mesh.Vertices)
	stats.Segments = len(segments)
	stats.BuildDuration = time.Since(start)
	return Frame{Segments: segments, Stats: stats}, nil
}

func (s *Scene) viewProjection(distance, aspect float64) Mat4 {
	eye := Vec3{
		X: distance * math.Cos(s.Camera.Pitch) * math.Sin(s.Camera.Yaw),
		Y: distance * math.Sin(s.Camera.Pitch),
		Z: distance * math.Cos(s.Camera.Pitch) * math.Cos(s.Camera.Yaw),
	}
	view := LookAt(eye, Vec3{}, Vec3{Y: 1})
	return Perspective(s.fov, aspect, nearPlane, farPlane).Mul(view)
}
