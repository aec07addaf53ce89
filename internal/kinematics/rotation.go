package kinematics

import (
	"math"

	"github.com/westphae/quaternion"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Orientation returns the body-to-inertial rotation for the Euler angles
// (roll about x, then pitch about y, then yaw about z).
func Orientation(euler dynamo.Vec3) quaternion.Quaternion {
	sr, cr := math.Sincos(euler.X / 2)
	sp, cp := math.Sincos(euler.Y / 2)
	sy, cy := math.Sincos(euler.Z / 2)

	roll := quaternion.Quaternion{W: cr, X: sr}
	pitch := quaternion.Quaternion{W: cp, Y: sp}
	yaw := quaternion.Quaternion{W: cy, Z: sy}
	return quaternion.Prod(yaw, pitch, roll)
}

// BodyToInertial rotates a body-frame vector into the inertial frame.
func BodyToInertial(euler, v dynamo.Vec3) dynamo.Vec3 {
	q := Orientation(euler)
	p := quaternion.Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	r := quaternion.Prod(q, p, q.Conj())
	return dynamo.Vec3{X: r.X, Y: r.Y, Z: r.Z}
}

func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Vec3Deg2Rad converts each component of an angle vector to radians.
func Vec3Deg2Rad(v dynamo.Vec3) dynamo.Vec3 {
	return dynamo.Vec3{X: Deg2Rad(v.X), Y: Deg2Rad(v.Y), Z: Deg2Rad(v.Z)}
}

// Vec3Rad2Deg converts each component of an angle vector to degrees.
func Vec3Rad2Deg(v dynamo.Vec3) dynamo.Vec3 {
	return dynamo.Vec3{X: Rad2Deg(v.X), Y: Rad2Deg(v.Y), Z: Rad2Deg(v.Z)}
}
