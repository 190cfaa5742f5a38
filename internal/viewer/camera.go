package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/geom"
)

// Rig is an orbit camera around the garment. It eases its yaw toward the
// goal set by Follow, and the user can orbit and zoom on top of that.
type Rig struct {
	Target   geom.Vec3
	Distance float64
	Yaw      float64 // radians, 0 looks at the front from +Z
	Pitch    float64 // radians
	Fovy     float64 // degrees

	// Rate is the easing speed toward the goal yaw, per second.
	Rate      float64
	LookSpeed float64 // radians per pixel of mouse drag

	goal float64
}

func NewRig() *Rig {
	return &Rig{
		Distance:  2.4,
		Pitch:     0.15,
		Fovy:      45,
		Rate:      6,
		LookSpeed: 0.008,
	}
}

// Follow sets the yaw the rig eases toward.
func (r *Rig) Follow(yaw float64) {
	r.goal = r.Yaw + wrapAngle(yaw-r.Yaw)
}

// Orbit turns the rig by a mouse drag in pixels. The goal moves with it so
// the rig stays where the user left it.
func (r *Rig) Orbit(dx, dy float64) {
	r.Yaw -= dx * r.LookSpeed
	r.goal -= dx * r.LookSpeed
	r.Pitch = clamp(r.Pitch+dy*r.LookSpeed, -1.2, 1.2)
}

// Zoom moves the camera in or out by wheel steps.
func (r *Rig) Zoom(steps float64) {
	r.Distance = clamp(r.Distance*math.Pow(0.9, steps), 1.2, 6)
}

// Step advances the yaw easing by dt seconds.
func (r *Rig) Step(dt float64) {
	r.Yaw += (r.goal - r.Yaw) * (1 - math.Exp(-r.Rate*dt))
	if math.Abs(r.goal-r.Yaw) < 1e-4 {
		r.Yaw = r.goal
	}
}

// Position is the camera's location in model space.
func (r *Rig) Position() geom.Vec3 {
	cp := math.Cos(r.Pitch)
	return r.Target.Add(geom.V3(
		math.Sin(r.Yaw)*cp,
		math.Sin(r.Pitch),
		math.Cos(r.Yaw)*cp,
	).Scale(r.Distance))
}

// Ray returns the pick ray through a point of a w×h viewport.
func (r *Rig) Ray(p geom.Vec2, w, h float64) (origin, dir geom.Vec3) {
	origin = r.Position()
	forward := r.Target.Sub(origin).Normalize()
	right := forward.Cross(geom.V3(0, 1, 0)).Normalize()
	up := right.Cross(forward)

	tanHalf := math.Tan(geom.Deg2Rad(r.Fovy) / 2)
	nx := (2*p.X/w - 1) * tanHalf * w / h
	ny := (1 - 2*p.Y/h) * tanHalf
	dir = forward.Add(right.Scale(nx)).Add(up.Scale(ny)).Normalize()
	return origin, dir
}

func (r *Rig) Camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(r.Position()),
		Target:     vec3(r.Target),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       float32(r.Fovy),
		Projection: rl.CameraPerspective,
	}
}

// wrapAngle folds a into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
