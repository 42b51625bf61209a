package store_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/spline"
	"github.com/chazu/tangent/pkg/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// sample builds a network touching every stored attribute: a three-way
// junction, an aligned point with uneven handles, a twisted up vector and
// settings with a disabled slot.
func sample(t *testing.T) *network.Network {
	t.Helper()
	n := network.New()
	n.AddSpline(geom.Zero, geom.Forward)
	n.AddSpline(geom.V(3, 0, 0), geom.Right)
	n.Spline(0).AddControlPoint()
	if _, err := n.Branch(network.PointRef{Spline: 0, Index: 1}); err != nil {
		t.Fatal(err)
	}
	if err := n.Connect(network.PointRef{Spline: 0, Index: 1}, network.PointRef{Spline: 1, Index: 0}); err != nil {
		t.Fatal(err)
	}

	p := n.Spline(0).Point(2)
	p.SetMode(spline.Aligned)
	p.SetRelativeHandle(1, geom.V(0.3, 0.1, 1.7))
	p.SetHandleMagnitude(0, 0.123456789)
	p.SetRotation(geom.EulerQuat(10, 20, 33.3).Mul(p.Rotation()))

	s := n.Spline(1)
	s.Name = "kerb line"
	s.SetSettings("road", 3)
	s.SetActive(1, false)
	return n
}

type snapshot struct {
	Name     string
	Settings string
	Active   []bool
	Points   []spline.PointState
}

func snap(n *network.Network) []snapshot {
	var out []snapshot
	for _, s := range n.Splines() {
		sn := snapshot{Name: s.Name, Settings: s.Settings(), Active: s.ActiveFlags()}
		for _, p := range s.Points() {
			sn.Points = append(sn.Points, p.State())
		}
		out = append(out, sn)
	}
	return out
}

func roundTrip(t *testing.T, n *network.Network) *network.Network {
	t.Helper()
	var buf bytes.Buffer
	if err := store.Encode(&buf, n); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := store.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTripExact(t *testing.T) {
	n := sample(t)
	got := roundTrip(t, n)

	if diff := cmp.Diff(snap(n), snap(got), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(n.Junctions(), got.Junctions()); diff != "" {
		t.Errorf("junctions (-want +got):\n%s", diff)
	}
	// Loading orders members by spline, not by join order.
	byRef := cmpopts.SortSlices(func(a, b network.PointRef) bool {
		if a.Spline != b.Spline {
			return a.Spline < b.Spline
		}
		return a.Index < b.Index
	})
	for _, id := range n.Junctions() {
		if diff := cmp.Diff(n.Members(id), got.Members(id), byRef); diff != "" {
			t.Errorf("junction %d members (-want +got):\n%s", id, diff)
		}
	}
	if a, b := n.Spline(0).ArcLength(), got.Spline(0).ArcLength(); a != b {
		t.Errorf("arc length = %v after load, want %v", b, a)
	}
}

func TestLoadedMemberOrder(t *testing.T) {
	got := roundTrip(t, sample(t))

	want := []network.PointRef{{Spline: 0, Index: 1}, {Spline: 1, Index: 0}, {Spline: 2, Index: 0}}
	if diff := cmp.Diff(want, got.Members(0)); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}
	next, err := got.Neighbor(want[0], 1)
	if err != nil {
		t.Fatal(err)
	}
	if next != want[1] {
		t.Errorf("Neighbor(%s, 1) = %s, want %s", want[0], next, want[1])
	}
}

func TestLoadedJunctionsStayLive(t *testing.T) {
	got := roundTrip(t, sample(t))

	ref := network.PointRef{Spline: 2, Index: 0}
	if err := got.SetAnchor(ref, geom.V(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	for _, r := range got.Members(0) {
		p, _ := got.Point(r)
		if p.Anchor() != geom.V(1, 2, 3) {
			t.Errorf("%s anchor = %v, want (1, 2, 3)", r, p.Anchor())
		}
	}

	// New junctions continue after the loaded ids.
	if err := got.Connect(network.PointRef{Spline: 0, Index: 0}, network.PointRef{Spline: 2, Index: 1}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1}, got.Junctions()); diff != "" {
		t.Errorf("junctions (-want +got):\n%s", diff)
	}
}

func TestDocumentLayout(t *testing.T) {
	n := network.New()
	n.AddSpline(geom.Zero, geom.Forward)
	var buf bytes.Buffer
	if err := store.Encode(&buf, n); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"version: 1",
		"name: Spline_00",
		"anchor: {x: 0, y: 0, z: 1}",
		"mode: mirrored",
		"junction: -1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("document missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "settings:") || strings.Contains(out, "active:") {
		t.Errorf("document has settings for a bare spline:\n%s", out)
	}
}

func TestDecodeErrors(t *testing.T) {
	point := "{anchor: {x: 0, y: 0, z: 0}, handles: [{x: 0, y: 0, z: -1}, {x: 0, y: 0, z: 1}], up: {x: 0, y: 1, z: 0}, mode: %s, junction: -1}"
	good := strings.ReplaceAll(point, "%s", "aligned")
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"version", "version: 7\nsplines: []\n", store.ErrVersion},
		{"one point", "version: 1\nsplines:\n  - name: a\n    points: [" + good + "]\n", spline.ErrTooFewPoints},
		{"bad mode", "version: 1\nsplines:\n  - name: a\n    points: [" + good + ", " + strings.ReplaceAll(point, "%s", "wobbly") + "]\n", nil},
		{"unknown field", "version: 1\ncolour: red\n", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.Decode(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatalf("Decode() = %v, want error", n)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveLoadFile(t *testing.T) {
	n := sample(t)
	path := filepath.Join(t.TempDir(), "net.yaml")
	if err := store.SaveFile(path, n); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := store.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(snap(n), snap(got), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) succeeded")
	}
}
