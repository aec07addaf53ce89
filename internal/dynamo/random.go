package dynamo

// Rand is the subset of *math/rand.Rand the simulator draws from. Each
// component owns its source so runs can be reproduced from a seed.
type Rand interface {
	Float64() float64
}

// InsideUnitSphere returns a point uniformly distributed inside the unit ball.
func InsideUnitSphere(r Rand) Vec3 {
	for {
		v := Vec3{2*r.Float64() - 1, 2*r.Float64() - 1, 2*r.Float64() - 1}
		if v.Dot(v) <= 1 {
			return v
		}
	}
}
