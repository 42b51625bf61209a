package spline

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/tangent/pkg/geom"
)

// straight returns a spline along +Z from 0 to length whose handles sit at
// thirds, so the Bézier parameter is uniform in distance.
func straight(t *testing.T, length float64) *Spline {
	t.Helper()
	third := geom.V(0, 0, 2*length/3)
	s, err := FromPoints(
		NewControlPoint(geom.Zero, third),
		NewControlPoint(geom.V(0, 0, length), third),
	)
	if err != nil {
		t.Fatalf("FromPoints: %v", err)
	}
	return s
}

// arch returns a curved three-point spline in the XZ plane.
func arch(t *testing.T) *Spline {
	t.Helper()
	a := NewControlPoint(geom.Zero, geom.V(2, 0, 2))
	b := NewControlPoint(geom.V(3, 0, 3), geom.V(2, 0, 0))
	c := NewControlPoint(geom.V(6, 0, 0), geom.V(2, 0, -2))
	s, err := FromPoints(a, b, c)
	if err != nil {
		t.Fatalf("FromPoints: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := New(geom.V(1, 0, 0), geom.V(0, 0, 5))
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	diff(t, "second anchor", geom.V(1, 0, 1), s.Point(1).Anchor())
	diff(t, "handle", geom.V(0, 0, 0.5), s.Point(0).RelativeHandle(1))
}

func TestFromPointsTooFew(t *testing.T) {
	_, err := FromPoints(NewControlPoint(geom.Zero, geom.Forward))
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("FromPoints(1 point) error = %v, want ErrTooFewPoints", err)
	}
}

func TestTableSize(t *testing.T) {
	s := arch(t)
	s.Rebuild()
	if got, want := len(s.table), (s.Len()-1)*TableResolution+1; got != want {
		t.Errorf("table length = %d, want %d", got, want)
	}
	for i := 1; i < len(s.table); i++ {
		if s.table[i] < s.table[i-1] {
			t.Fatalf("table not monotonic at %d: %v < %v", i, s.table[i], s.table[i-1])
		}
	}
}

func TestArcLengthStraight(t *testing.T) {
	s := straight(t, 5)
	if got := s.ArcLength(); math.Abs(got-5) > 1e-9 {
		t.Errorf("ArcLength() = %v, want 5", got)
	}
}

func TestPointAtDistanceStraight(t *testing.T) {
	s := straight(t, 5)
	for _, d := range []float64{0, 1, 2.5, 4, 5} {
		diff(t, "point", geom.V(0, 0, d), s.PointAtDistance(d))
		diff(t, "direction", geom.Forward, s.DirectionAtDistance(d))
	}
	diff(t, "fraction", geom.V(0, 0, 2), s.PointAt(0.4))
}

func TestClampBeyondEnds(t *testing.T) {
	s := arch(t)
	end := s.Point(s.Len() - 1).Anchor()
	diff(t, "past end", end, s.PointAtDistance(s.ArcLength()+10))
	diff(t, "fraction one", end, s.PointAt(1))
	diff(t, "before start", geom.Zero, s.PointAtDistance(-3))
	if got := s.Param(1e9); got != float64(s.Len()-1) {
		t.Errorf("Param(past end) = %v, want %d", got, s.Len()-1)
	}
}

func TestParamMonotonic(t *testing.T) {
	s := arch(t)
	l := s.ArcLength()
	prev := -1.0
	for i := 0; i <= 200; i++ {
		u := s.Param(l * float64(i) / 200)
		if u < prev {
			t.Fatalf("Param not monotonic at step %d: %v < %v", i, u, prev)
		}
		prev = u
	}
}

func TestUniformSpeed(t *testing.T) {
	s := arch(t)
	l := s.ArcLength()
	const steps = 50
	want := l / steps
	for i := 1; i <= steps; i++ {
		a := s.PointAtDistance(want * float64(i-1))
		b := s.PointAtDistance(want * float64(i))
		if got := geom.Distance(a, b); math.Abs(got-want) > 0.01*want {
			t.Errorf("step %d chord = %v, want about %v", i, got, want)
		}
	}
}

func TestStaleTableRebuilt(t *testing.T) {
	s := straight(t, 5)
	if got := s.ArcLength(); math.Abs(got-5) > 1e-9 {
		t.Fatalf("ArcLength() = %v, want 5", got)
	}
	s.Point(1).SetAnchor(geom.V(0, 0, 10))
	if got := s.ArcLength(); math.Abs(got-10) > 1e-9 {
		t.Errorf("ArcLength() after edit = %v, want 10", got)
	}
}

func TestAddControlPoint(t *testing.T) {
	s := straight(t, 3)
	before := s.ArcLength()
	last := s.Point(1)
	p := s.AddControlPoint()

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	diff(t, "anchor", geom.V(0, 0, 4), p.Anchor())
	if got, want := p.HandleMagnitude(1), last.HandleMagnitude(1)/2; math.Abs(got-want) > 1e-9 {
		t.Errorf("HandleMagnitude(1) = %v, want %v", got, want)
	}
	if got := s.ArcLength(); math.Abs(got-(before+1)) > 1e-6 {
		t.Errorf("ArcLength() = %v, want %v", got, before+1)
	}
}

func TestInsertControlPointAtStart(t *testing.T) {
	s := straight(t, 3)
	p, err := s.InsertControlPoint(0)
	if err != nil {
		t.Fatalf("InsertControlPoint(0): %v", err)
	}
	if s.Point(0) != p {
		t.Fatal("inserted point is not first")
	}
	diff(t, "anchor", geom.V(0, 0, -1), p.Anchor())
	diff(t, "in handle", geom.V(0, 0, -2.5), p.RelativeHandle(0))
	diff(t, "out handle", geom.V(0, 0, 2.5), p.RelativeHandle(1))
}

func TestInsertControlPointKeepsShape(t *testing.T) {
	s := arch(t)
	orig, _ := s.Segment(0)

	p, err := s.InsertControlPoint(1)
	if err != nil {
		t.Fatalf("InsertControlPoint(1): %v", err)
	}
	if s.Len() != 4 || s.Point(1) != p {
		t.Fatalf("Len() = %d, point 1 = %p, want 4, %p", s.Len(), s.Point(1), p)
	}
	if s.Point(0).Mode() != Aligned || s.Point(2).Mode() != Aligned {
		t.Error("neighbours should switch to aligned")
	}

	left, _ := s.Segment(0)
	right, _ := s.Segment(1)
	for _, u := range []float64{0, 0.3, 0.5, 0.8, 1} {
		diff(t, "left half", orig.Eval(u/2), left.Eval(u))
		diff(t, "right half", orig.Eval(0.5+u/2), right.Eval(u))
	}
}

func TestInsertRemoveRestoresCount(t *testing.T) {
	s := arch(t)
	for i := 0; i <= s.Len(); i++ {
		n := s.Len()
		if _, err := s.InsertControlPoint(i); err != nil {
			t.Fatalf("InsertControlPoint(%d): %v", i, err)
		}
		if err := s.RemoveControlPoint(i); err != nil {
			t.Fatalf("RemoveControlPoint(%d): %v", i, err)
		}
		if s.Len() != n {
			t.Errorf("after insert/remove at %d Len() = %d, want %d", i, s.Len(), n)
		}
	}
}

func TestIndexErrors(t *testing.T) {
	s := arch(t)
	if _, err := s.InsertControlPoint(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("InsertControlPoint(-1) error = %v", err)
	}
	if _, err := s.InsertControlPoint(s.Len() + 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("InsertControlPoint(len+1) error = %v", err)
	}
	if err := s.RemoveControlPoint(s.Len()); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveControlPoint(len) error = %v", err)
	}
	if _, err := s.Segment(s.SegmentCount()); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Segment(count) error = %v", err)
	}
}

func TestUpInterpolatesTwist(t *testing.T) {
	s := straight(t, 4)
	diff(t, "untwisted", geom.Up, geom.Normalize(s.UpAtDistance(2)))

	s.Point(1).SetRotation(geom.AngleAxis(90, geom.Forward))
	h := math.Sqrt2 / 2
	diff(t, "half twist", geom.V(-h, h, 0), geom.Normalize(s.UpAtDistance(2)))
	diff(t, "full twist", geom.Left, geom.Normalize(s.UpAt(1)))
}

func TestUpPerpendicularToDirection(t *testing.T) {
	s := arch(t)
	s.Point(1).SetRotation(geom.EulerQuat(10, 90, 30))
	l := s.ArcLength()
	for i := 0; i <= 10; i++ {
		d := l * float64(i) / 10
		if dot := s.UpAtDistance(d).Dot(s.DirectionAtDistance(d)); math.Abs(dot) > 1e-9 {
			t.Errorf("up not perpendicular at %v: dot = %v", d, dot)
		}
	}
}

func TestFrameAtDistance(t *testing.T) {
	f := straight(t, 2).FrameAtDistance(1)
	diff(t, "position", geom.V(0, 0, 1), f.Position)
	diff(t, "forward", geom.Forward, f.Forward)
	diff(t, "up", geom.Up, f.Up)
	diff(t, "right", geom.Left, f.Right)
}

func TestSettingsFlags(t *testing.T) {
	s := arch(t)
	if !s.IsActive(3) {
		t.Error("slots without settings should be active")
	}
	s.SetSettings("rail", 3)
	if s.Settings() != "rail" {
		t.Errorf("Settings() = %q, want rail", s.Settings())
	}
	s.SetActive(1, false)
	want := []bool{true, false, true}
	got := s.ActiveFlags()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ActiveFlags()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	s.SetSettings("rail", 2)
	if !s.IsActive(1) {
		t.Error("SetSettings should reset flags to active")
	}
}
