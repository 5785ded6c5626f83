package geometry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestIdentity_MulIsNeutral(t *testing.T) {
	pose := FromTranslation(0.1, -0.2, 0.3).Mul(FromRotY(0.4))

	if !pose.Mul(Identity()).ApproxEqual(pose, floatTolerance) {
		t.Error("pose * I != pose")
	}
	if !Identity().Mul(pose).ApproxEqual(pose, floatTolerance) {
		t.Error("I * pose != pose")
	}
}

func TestMul_TranslationsAdd(t *testing.T) {
	got := FromTranslation(1, 2, 3).Mul(FromTranslation(0.5, -1, 2)).Translation()
	want := r3.Vector{X: 1.5, Y: 1, Z: 5}
	if !got.ApproxEqual(want) {
		t.Errorf("translation = %v, want %v", got, want)
	}
}

func TestMul_OffsetInLocalFrame(t *testing.T) {
	// Rotate 90 degrees about Y: local +X maps to world -Z.
	base := FromTranslation(1, 0, 0).Mul(FromRotY(math.Pi / 2))
	got := base.Mul(FromTranslation(1, 0, 0)).Translation()

	if !floatEquals(got.X, 1) || !floatEquals(got.Y, 0) || !floatEquals(got.Z, -1) {
		t.Errorf("translation = %v, want (1, 0, -1)", got)
	}
}

func TestFromRotY_Orthonormal(t *testing.T) {
	r := FromRotY(Deg2Rad(5))
	x := r.Apply(r3.Vector{X: 1})
	z := r.Apply(r3.Vector{Z: 1})

	if !floatEquals(x.Norm(), 1) || !floatEquals(z.Norm(), 1) {
		t.Errorf("axes not unit length: %v %v", x, z)
	}
	if !floatEquals(x.Dot(z), 0) {
		t.Errorf("axes not orthogonal: %v", x.Dot(z))
	}
	if r.Translation() != (r3.Vector{}) {
		t.Errorf("rotation has translation %v", r.Translation())
	}
}

func TestFromSlice(t *testing.T) {
	if _, err := FromSlice(make([]float64, 15)); err == nil {
		t.Error("expected error for 15 values")
	}

	in := Identity().Slice()
	in[3] = 0.42
	tf, err := FromSlice(in)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if tf.At(0, 3) != 0.42 {
		t.Errorf("At(0,3) = %v, want 0.42", tf.At(0, 3))
	}

	// Slice must be a copy.
	out := tf.Slice()
	out[3] = 99
	if tf.At(0, 3) != 0.42 {
		t.Error("Slice leaked internal storage")
	}
}

func TestJSON(t *testing.T) {
	tf := FromTranslation(0.01, 0.02, 0.03)

	data, err := json.Marshal(tf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Transform
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != tf {
		t.Errorf("got %v, want %v", back, tf)
	}

	if err := json.Unmarshal([]byte(`[1,2,3]`), &back); err == nil {
		t.Error("expected error for short matrix")
	}
}

func TestIsFinite(t *testing.T) {
	if !Identity().IsFinite() {
		t.Error("identity should be finite")
	}
	bad := Identity().Slice()
	bad[5] = math.NaN()
	tf, _ := FromSlice(bad)
	if tf.IsFinite() {
		t.Error("NaN transform reported finite")
	}
}
