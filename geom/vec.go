// Package geom implements the 2D/3D coordinate, bounding box and polygon
// primitives shared by the spatial index, the ECS components and the
// movement system.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tilekeep/server/util"
)

// Vec2 is a 2D float64 coordinate, used for sizes and velocities.
type Vec2 mgl64.Vec2

// OriginVec2 is the zero vector.
var OriginVec2 = Vec2{}

// NewVec2 builds a Vec2 from x/y components.
func NewVec2(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) X() float64 { return v[0] }
func (v Vec2) Y() float64 { return v[1] }

// WithX returns a copy of v with its x component replaced.
func (v Vec2) WithX(x float64) Vec2 { return Vec2{x, v[1]} }

// WithY returns a copy of v with its y component replaced.
func (v Vec2) WithY(y float64) Vec2 { return Vec2{v[0], y} }

// mgl returns the underlying mathgl vector.
func (v Vec2) mgl() mgl64.Vec2 { return mgl64.Vec2(v) }

// AsTuple deconstructs the vector into a plain (x, y) pair.
func (v Vec2) AsTuple() (float64, float64) { return v[0], v[1] }

// Add returns the component-wise sum of v and o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2(v.mgl().Add(o.mgl())) }

// Sub returns v minus o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2(v.mgl().Sub(o.mgl())) }

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 { return v.mgl().Sub(o.mgl()).Len() }

// Length returns the magnitude of v.
func (v Vec2) Length() float64 { return v.mgl().Len() }

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalize() Vec2 {
	if v.Length() == 0 {
		return OriginVec2
	}
	return Vec2(v.mgl().Normalize())
}

// Scaled returns v rescaled to the given length, preserving direction.
func (v Vec2) Scaled(length float64) Vec2 {
	n := v.Normalize()
	return Vec2{n[0] * length, n[1] * length}
}

// ApplyScalar multiplies every component of v by scalar.
func (v Vec2) ApplyScalar(scalar float64) Vec2 { return Vec2(v.mgl().Mul(scalar)) }

// Clamped returns v rescaled so its length lies within [min, max]. A v
// already within range is returned unmodified.
func (v Vec2) Clamped(min, max float64) Vec2 {
	length := v.Length()
	switch {
	case length < min:
		return v.Scaled(min)
	case length > max:
		return v.Scaled(max)
	default:
		return v
	}
}

// TowardsOrigin moves v a distance of step towards the origin, clamping at
// the origin rather than overshooting past it.
func (v Vec2) TowardsOrigin(step float64) Vec2 {
	length := v.Length()
	if length == 0 || step >= length {
		return OriginVec2
	}
	scale := (length - step) / length
	return Vec2{v[0] * scale, v[1] * scale}
}

// IsZero reports whether v is the origin.
func (v Vec2) IsZero() bool { return v == OriginVec2 }

// ClampComponents clamps each axis of v independently to [min, max] on
// that axis.
func (v Vec2) ClampComponents(min, max Vec2) Vec2 {
	return Vec2{
		util.Clamp(v[0], min.X(), max.X()),
		util.Clamp(v[1], min.Y(), max.Y()),
	}
}

// Vec3 is a 3D float64 coordinate. The z component is used both as a
// discrete layer index (floor plane vs. projectile plane) and, where noted,
// as a geometric coordinate for AABB containment and intersection tests.
type Vec3 mgl64.Vec3

// OriginVec3 is the zero vector.
var OriginVec3 = Vec3{}

// NewVec3 builds a Vec3 from x/y/z components.
func NewVec3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// FromVec2 lifts a Vec2 into 3D space at the given z layer.
func FromVec2(v Vec2, z float64) Vec3 { return Vec3{v[0], v[1], z} }

func (v Vec3) X() float64 { return v[0] }
func (v Vec3) Y() float64 { return v[1] }
func (v Vec3) Z() float64 { return v[2] }

func (v *Vec3) SetX(x float64) { v[0] = x }
func (v *Vec3) SetY(y float64) { v[1] = y }
func (v *Vec3) SetZ(z float64) { v[2] = z }

func (v Vec3) mgl() mgl64.Vec3 { return mgl64.Vec3(v) }

// AsTuple deconstructs the vector into a plain (x, y, z) triple.
func (v Vec3) AsTuple() (float64, float64, float64) { return v[0], v[1], v[2] }

// Vec2 drops the z component, flattening the vector to 2D.
func (v Vec3) Vec2() Vec2 { return Vec2{v[0], v[1]} }

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3(v.mgl().Add(o.mgl())) }

// PivotAngle returns the angle, in radians, of v around other. Used to sort
// polygon vertices clockwise around a pivot.
func (v Vec3) PivotAngle(other Vec3) float64 {
	return math.Atan2(v[1]-other[1], v[0]-other[0])
}

// Round rounds every component to the nearest integer.
func (v Vec3) Round() Vec3 {
	return Vec3{math.Round(v[0]), math.Round(v[1]), math.Round(v[2])}
}

// Layer returns the z component rounded to the nearest integer, the
// convention used to distinguish the floor plane from the projectile plane.
func (v Vec3) Layer() int64 { return int64(math.Round(v[2])) }

// Offset2D returns the difference between v and other, ignoring z (z is
// carried over from v unchanged).
func (v Vec3) Offset2D(other Vec3) Vec3 {
	return Vec3{v[0] - other[0], v[1] - other[1], v[2]}
}

// Distance2D returns the Euclidean distance between v and other, ignoring z.
func (v Vec3) Distance2D(other Vec3) float64 {
	return v.Vec2().Distance(other.Vec2())
}

// TowardsOrigin moves each axis of v by up to step towards zero, clamping
// each axis individually rather than scaling the whole vector.
func (v Vec3) TowardsOrigin(step float64) Vec3 {
	axis := func(x float64) float64 {
		if math.Abs(x) <= step {
			return 0
		}
		return x - math.Copysign(step, x)
	}
	return Vec3{axis(v[0]), axis(v[1]), axis(v[2])}
}
