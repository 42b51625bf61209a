package spline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chazu/tangent/pkg/geom"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func diff(t *testing.T, what string, want, got any) {
	t.Helper()
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", what, d)
	}
}

func TestNewControlPoint(t *testing.T) {
	p := NewControlPoint(geom.V(1, 2, 3), geom.V(0, 0, 2))
	diff(t, "anchor", geom.V(1, 2, 3), p.Anchor())
	diff(t, "handle 0", geom.V(0, 0, -1), p.RelativeHandle(0))
	diff(t, "handle 1", geom.V(0, 0, 1), p.RelativeHandle(1))
	diff(t, "absolute handle 1", geom.V(1, 2, 4), p.Handle(1))
	if p.Mode() != Mirrored {
		t.Errorf("Mode() = %v, want mirrored", p.Mode())
	}
	if p.Junction() != NoJunction {
		t.Errorf("Junction() = %d, want %d", p.Junction(), NoJunction)
	}
	diff(t, "up", geom.Up, p.Up())
}

func TestNewControlPointZeroForward(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Zero)
	diff(t, "handle 1", geom.V(0, 0, 0.5), p.RelativeHandle(1))
}

func TestMirroredHandles(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Forward)
	for i, v := range []geom.Vec3{geom.V(1, 2, 3), geom.V(-0.5, 0, 4)} {
		p.SetRelativeHandle(i, v)
		diff(t, "set handle", v, p.RelativeHandle(i))
		diff(t, "opposite handle", geom.Neg(v), p.RelativeHandle(1-i))
	}

	p.SetHandle(1, geom.V(0, 3, 0))
	diff(t, "absolute set", geom.V(0, -3, 0), p.RelativeHandle(0))
}

func TestAlignedHandles(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.V(0, 0, 4))
	p.SetMode(Aligned)
	p.SetRelativeHandle(1, geom.V(3, 0, 0))

	if got := p.HandleMagnitude(0); math.Abs(got-2) > 1e-9 {
		t.Errorf("HandleMagnitude(0) = %v, want 2", got)
	}
	diff(t, "opposite direction", geom.V(-1, 0, 0), geom.Normalize(p.RelativeHandle(0)))
	if got := p.HandleMagnitude(1); math.Abs(got-3) > 1e-9 {
		t.Errorf("HandleMagnitude(1) = %v, want 3", got)
	}
}

func TestSetModeRederives(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Forward)
	p.SetMode(Aligned)
	p.SetHandleMagnitude(0, 3)
	p.SetHandleMagnitude(1, 1)
	p.SetMode(Mirrored)
	diff(t, "handle 0", geom.Neg(p.RelativeHandle(1)), p.RelativeHandle(0))
	if got := p.HandleMagnitude(0); math.Abs(got-1) > 1e-9 {
		t.Errorf("HandleMagnitude(0) = %v, want 1", got)
	}
}

func TestHandleMagnitudeClamp(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		set  func(p *ControlPoint)
	}{
		{"zero relative handle", Mirrored, func(p *ControlPoint) { p.SetRelativeHandle(1, geom.Zero) }},
		{"zero magnitude", Mirrored, func(p *ControlPoint) { p.SetHandleMagnitude(1, 0) }},
		{"negative magnitude", Aligned, func(p *ControlPoint) { p.SetHandleMagnitude(1, -4) }},
		{"handle on anchor", Aligned, func(p *ControlPoint) { p.SetHandle(1, p.Anchor()) }},
		{"flattening scale", Aligned, func(p *ControlPoint) { p.Scale(geom.Zero) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewControlPoint(geom.V(1, 1, 1), geom.Forward)
			p.SetMode(tt.mode)
			tt.set(p)
			if got := p.HandleMagnitude(1); math.Abs(got-MinHandleMagnitude) > 1e-12 {
				t.Errorf("HandleMagnitude(1) = %v, want %v", got, MinHandleMagnitude)
			}
			diff(t, "direction", geom.Forward, geom.Normalize(p.RelativeHandle(1)))
		})
	}
}

func TestMirroredMagnitudeFollows(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Forward)
	p.SetHandleMagnitude(0, 2.5)
	diff(t, "handle 1", geom.V(0, 0, 2.5), p.RelativeHandle(1))
}

func TestSetRotation(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Forward)
	p.SetMode(Aligned)
	p.SetHandleMagnitude(0, 2)
	p.SetRotation(geom.AngleAxis(90, geom.Up))

	diff(t, "handle 0", geom.V(-2, 0, 0), p.RelativeHandle(0))
	diff(t, "handle 1", geom.V(0.5, 0, 0), p.RelativeHandle(1))
	diff(t, "up", geom.Up, p.Up())
}

func TestRotationRoundTrip(t *testing.T) {
	q := geom.EulerQuat(20, -35, 60)
	p := NewControlPoint(geom.Zero, geom.Forward)
	p.SetRotation(q)
	got := p.Rotation()
	for _, v := range []geom.Vec3{geom.Forward, geom.Up, geom.Right} {
		diff(t, "rotated axis", q.Rotate(v), got.Rotate(v))
	}

	e := p.EulerAngles()
	diff(t, "euler forward", q.Rotate(geom.Forward), e.Quat().Rotate(geom.Forward))
}

func TestScale(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.V(2, 2, 2))
	p.Scale(geom.V(1, 0.5, 2))
	diff(t, "handle 1", geom.V(1, 0.5, 2), p.RelativeHandle(1))
	diff(t, "handle 0", geom.V(-1, -0.5, -2), p.RelativeHandle(0))
}

func TestVersionBumps(t *testing.T) {
	p := NewControlPoint(geom.Zero, geom.Forward)
	mutations := []func(){
		func() { p.SetAnchor(geom.One) },
		func() { p.SetRelativeHandle(0, geom.Back) },
		func() { p.SetHandleMagnitude(1, 2) },
		func() { p.SetMode(Aligned) },
		func() { p.SetRotation(geom.Identity()) },
		func() { p.Scale(geom.One) },
	}
	for i, m := range mutations {
		before := p.Version()
		m()
		if p.Version() == before {
			t.Errorf("mutation %d did not change the version", i)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	p := NewControlPoint(geom.V(1, 2, 3), geom.V(0.3, 0.1, 2))
	p.SetMode(Aligned)
	p.SetHandleMagnitude(0, 0.7)
	p.SetRotation(geom.EulerQuat(5, 10, 15))
	p.SetJunction(4)

	got := FromState(p.State()).State()
	if d := cmp.Diff(p.State(), got); d != "" {
		t.Errorf("state mismatch (-want +got):\n%s", d)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Aligned, Mirrored} {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m.String(), err)
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if _, err := ParseMode("free"); err == nil {
		t.Error("ParseMode(free) should fail")
	}
}
