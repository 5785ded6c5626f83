// Package geometry provides rigid-body transforms for robot end-effector poses.
//
// A Transform is a 4x4 homogeneous matrix stored row-major, the same layout
// the robot middleware uses on the wire for getTransform results and
// interpolation waypoints.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Size is the number of elements in a serialized Transform.
const Size = 16

// Transform is an immutable rigid-body pose.
type Transform struct {
	m [Size]float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: [Size]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// FromTranslation returns a pure translation.
func FromTranslation(x, y, z float64) Transform {
	t := Identity()
	t.m[3], t.m[7], t.m[11] = x, y, z
	return t
}

// FromVector returns a pure translation by v.
func FromVector(v r3.Vector) Transform {
	return FromTranslation(v.X, v.Y, v.Z)
}

// FromRotY returns a rotation of theta radians about the Y (lateral) axis.
func FromRotY(theta float64) Transform {
	c, s := math.Cos(theta), math.Sin(theta)
	return Transform{m: [Size]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}}
}

// FromSlice builds a Transform from 16 row-major values.
func FromSlice(v []float64) (Transform, error) {
	if len(v) != Size {
		return Transform{}, fmt.Errorf("geometry: transform needs %d values, got %d", Size, len(v))
	}
	var t Transform
	copy(t.m[:], v)
	return t, nil
}

// Slice returns a copy of the row-major values.
func (t Transform) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, t.m[:])
	return out
}

// At returns the element at row i, column j.
func (t Transform) At(i, j int) float64 {
	return t.m[i*4+j]
}

// Mul chains poses: the result applies o in the local frame of t.
func (t Transform) Mul(o Transform) Transform {
	a := mat.NewDense(4, 4, t.Slice())
	b := mat.NewDense(4, 4, o.Slice())

	var c mat.Dense
	c.Mul(a, b)

	var out Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.m[i*4+j] = c.At(i, j)
		}
	}
	return out
}

// Translation returns the translation component.
func (t Transform) Translation() r3.Vector {
	return r3.Vector{X: t.m[3], Y: t.m[7], Z: t.m[11]}
}

// Apply rotates v by the rotation part of t (translation is ignored).
func (t Transform) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: t.m[0]*v.X + t.m[1]*v.Y + t.m[2]*v.Z,
		Y: t.m[4]*v.X + t.m[5]*v.Y + t.m[6]*v.Z,
		Z: t.m[8]*v.X + t.m[9]*v.Y + t.m[10]*v.Z,
	}
}

// ApproxEqual reports whether every element differs by at most tol.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	for i := range t.m {
		if math.Abs(t.m[i]-o.m[i]) > tol {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element is a finite number.
func (t Transform) IsFinite() bool {
	for _, v := range t.m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (t Transform) String() string {
	p := t.Translation()
	return fmt.Sprintf("Transform(t=[%.4f %.4f %.4f])", p.X, p.Y, p.Z)
}

// MarshalJSON encodes the transform as 16 row-major numbers.
func (t Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.m[:])
}

// UnmarshalJSON decodes 16 row-major numbers.
func (t *Transform) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := FromSlice(v)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
