package choreography

import "github.com/teslashibe/go-nao/pkg/geometry"

// PathPolicy holds the fixed offsets of a kick swing. These are tuning
// points, not physical limits.
type PathPolicy struct {
	// DX is the forward/backward swing in metres.
	DX float64
	// DZ is the foot lift in metres.
	DZ float64
	// DWY is the wind-up pitch about the lateral axis, in radians.
	DWY float64
}

// DefaultPathPolicy swings 5 cm back and forth, lifts 5 cm, and pitches the
// foot 5 degrees on the wind-up.
func DefaultPathPolicy() PathPolicy {
	return PathPolicy{
		DX:  0.05,
		DZ:  0.05,
		DWY: geometry.Deg2Rad(5.0),
	}
}

// ComputePath derives a three-waypoint swing from the current effector pose:
// wind-up (back, up, pitched), strike (forward, up), and return to start.
// Offsets are composed on the right, so they are expressed in the
// effector's own frame at the time of the read.
func ComputePath(current geometry.Transform, policy PathPolicy) []geometry.Transform {
	windUp := current.
		Mul(geometry.FromTranslation(-policy.DX, 0, policy.DZ)).
		Mul(geometry.FromRotY(policy.DWY))
	strike := current.Mul(geometry.FromTranslation(policy.DX, 0, policy.DZ))

	return []geometry.Transform{windUp, strike, current}
}
