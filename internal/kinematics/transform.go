package kinematics

import (
	"math"

	"github.com/skelterjohn/go.matrix"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// singularityEpsilon is added to cos(pitch), away from zero, before the
// inverse is taken. Near ±90° pitch the result is finite but large.
const singularityEpsilon = 1e-9

// rateMatrix maps Euler-angle rates onto the body rotation-axis vector.
// Only roll and pitch enter; yaw never does.
func rateMatrix(roll, cosPitch, sinPitch float64) *matrix.DenseMatrix {
	sr, cr := math.Sincos(roll)
	return matrix.MakeDenseMatrixStacked([][]float64{
		{1, 0, -sinPitch},
		{0, cr, sr * cosPitch},
		{0, -sr, cr * cosPitch},
	})
}

func apply(m *matrix.DenseMatrix, v dynamo.Vec3) dynamo.Vec3 {
	col := matrix.MakeDenseMatrix([]float64{v.X, v.Y, v.Z}, 3, 1)
	out := matrix.Product(m, col)
	return dynamo.Vec3{X: out.Get(0, 0), Y: out.Get(1, 0), Z: out.Get(2, 0)}
}

// ToAxisVector converts Euler-angle rates into the angular-velocity vector
// along the instantaneous rotation axis, for the attitude euler.
func ToAxisVector(euler, eulerRates dynamo.Vec3) dynamo.Vec3 {
	sp, cp := math.Sincos(euler.Y)
	return apply(rateMatrix(euler.X, cp, sp), eulerRates)
}

// FromAxisVector is the inverse of ToAxisVector. The matrix is singular at
// pitch = ±90°; cos(pitch) is nudged by singularityEpsilon so the inverse
// always exists, and the caller is expected to catch the resulting blow-up.
func FromAxisVector(euler, axis dynamo.Vec3) dynamo.Vec3 {
	sp, cp := math.Sincos(euler.Y)
	cp += math.Copysign(singularityEpsilon, cp)

	inv, err := rateMatrix(euler.X, cp, sp).Inverse()
	if err != nil {
		nan := math.NaN()
		return dynamo.Vec3{X: nan, Y: nan, Z: nan}
	}
	return apply(inv, axis)
}
