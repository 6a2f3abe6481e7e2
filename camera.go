package texquad

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/texquad/input"
)

// MaxPitch is the pitch limit in degrees. Looking straight up or down would
// make the front vector parallel to the world up vector.
const MaxPitch = 89

// Default camera settings.
var (
	DefaultCameraPosition = mgl32.Vec3{-3, 1.5, 0}
	DefaultWorldUp        = mgl32.Vec3{0, 1, 0}
)

// Default camera angles and speeds.
const (
	DefaultYaw       = 0
	DefaultPitch     = -30
	DefaultLookSpeed = 2   // degrees per frame at full stick
	DefaultMoveSpeed = 0.5 // world units per frame at full stick
)

// Camera is a free-look camera driven by two analog sticks.
// The right stick turns it, the left stick moves it along its own axes.
type Camera struct {
	Position   mgl32.Vec3
	Yaw, Pitch float32 // degrees
	WorldUp    mgl32.Vec3

	LookSpeed float32
	MoveSpeed float32

	front, right, up mgl32.Vec3
}

// NewCamera returns a camera at the default position looking slightly down.
func NewCamera() *Camera {
	c := &Camera{
		Position:  DefaultCameraPosition,
		Yaw:       DefaultYaw,
		Pitch:     DefaultPitch,
		WorldUp:   DefaultWorldUp,
		LookSpeed: DefaultLookSpeed,
		MoveSpeed: DefaultMoveSpeed,
	}
	c.updateVectors()
	return c
}

// Update applies one frame of stick input: turn first, then move along the
// updated axes.
func (c *Camera) Update(st input.State) {
	c.Yaw += st.Right.X * c.LookSpeed
	c.Pitch = mgl32.Clamp(c.Pitch+st.Right.Y*c.LookSpeed, -MaxPitch, MaxPitch)
	c.updateVectors()

	c.Position = c.Position.Add(c.front.Mul(st.Left.Y * c.MoveSpeed))
	c.Position = c.Position.Add(c.right.Mul(st.Left.X * c.MoveSpeed))
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 { return c.front }

// Right returns the unit right vector.
func (c *Camera) Right() mgl32.Vec3 { return c.right }

// Up returns the unit camera up vector.
func (c *Camera) Up() mgl32.Vec3 { return c.up }

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}
