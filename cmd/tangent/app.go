package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/tangent/pkg/engine"
	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/kernel"
	"github.com/chazu/tangent/pkg/kernel/sdfx"
	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/placement"
	"github.com/chazu/tangent/pkg/settings"
	"github.com/chazu/tangent/pkg/tessellate"
	"gopkg.in/yaml.v3"
)

// proxySize is the edge length of the stand-in box written for every
// placed object. Cylinders use it as height and diameter.
const proxySize = 0.25

// ProxyShape selects the stand-in written for placed objects.
type ProxyShape string

const (
	ProxyBox      ProxyShape = "box"
	ProxyCylinder ProxyShape = "cylinder"
)

// ParseProxyShape returns the shape named by s.
func ParseProxyShape(s string) (ProxyShape, error) {
	switch shape := ProxyShape(s); shape {
	case ProxyBox, ProxyCylinder:
		return shape, nil
	}
	return "", fmt.Errorf("unknown proxy shape %q", s)
}

// App runs the generation pipeline: script -> network -> meshes and
// placements.
type App struct {
	engine   *engine.Engine
	lib      *settings.Library
	exporter kernel.Exporter
	shaper   kernel.Shaper
	log      *slog.Logger
}

// Result is everything one evaluation produced.
type Result struct {
	Network    *network.Network
	Meshes     []*kernel.Mesh
	Placements []placement.Set
	Errors     []engine.EvalError
	Warnings   []engine.EvalWarning
}

// NewApp creates a new App with an engine bound to lib and the sdfx
// backend.
func NewApp(lib *settings.Library, log *slog.Logger) *App {
	if lib == nil {
		lib = settings.NewLibrary()
	}
	if log == nil {
		log = slog.Default()
	}
	backend := sdfx.New()
	return &App{
		engine:   engine.NewEngine(engine.WithLibrary(lib), engine.WithLogger(log)),
		lib:      lib,
		exporter: backend,
		shaper:   backend,
		log:      log,
	}
}

// Evaluate takes Lisp source and returns the generated content. Failures
// are reported in Result.Errors.
func (a *App) Evaluate(source string) Result {
	// Step 1: Evaluate the Lisp source into a network.
	res, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "err", err)
		return Result{Errors: []engine.EvalError{{Message: err.Error()}}}
	}
	out := Result{Errors: res.Errors, Warnings: res.Warnings}
	for _, w := range res.Warnings {
		a.log.Warn("evaluate", "spline", w.Spline, "msg", w.Message)
	}
	if len(res.Errors) > 0 {
		return out
	}
	return a.Generate(res.Network, out)
}

// Generate runs the mesh and placement passes over net. Earlier results in
// out are kept.
func (a *App) Generate(net *network.Network, out Result) Result {
	out.Network = net

	// Step 2: Tessellate every active mesh slot.
	meshes, err := tessellate.Tessellate(net, a.lib)
	if err != nil {
		a.log.Error("tessellate failed", "err", err)
		out.Errors = append(out.Errors, engine.EvalError{Message: "tessellation failed: " + err.Error()})
		return out
	}
	out.Meshes = meshes

	// Step 3: Place objects for every active placer slot.
	sets, err := placement.PlaceAll(net, a.lib)
	if err != nil {
		a.log.Error("placement failed", "err", err)
		out.Errors = append(out.Errors, engine.EvalError{Message: "placement failed: " + err.Error()})
		return out
	}
	out.Placements = sets

	a.log.Info("generated",
		"splines", net.Len(),
		"junctions", len(net.Junctions()),
		"meshes", len(meshes),
		"placement_sets", len(sets))
	return out
}

// Proxies returns one merged stand-in mesh per placement set.
func (a *App) Proxies(sets []placement.Set, shape ProxyShape) ([]*kernel.Mesh, error) {
	var (
		proto *kernel.Mesh
		err   error
	)
	switch shape {
	case ProxyBox:
		proto, err = a.shaper.Box(geom.V(proxySize, proxySize, proxySize))
	case ProxyCylinder:
		proto, err = a.shaper.Cylinder(proxySize, proxySize/2)
	default:
		err = fmt.Errorf("unknown proxy shape %q", shape)
	}
	if err != nil {
		return nil, fmt.Errorf("proxy shape: %w", err)
	}
	out := make([]*kernel.Mesh, 0, len(sets))
	for _, s := range sets {
		if len(s.Placements) == 0 {
			continue
		}
		out = append(out, placement.Proxies(proto, s))
	}
	return out, nil
}

// ExportSTL writes meshes to path.
func (a *App) ExportSTL(path string, meshes []*kernel.Mesh) error {
	if err := a.exporter.Export(path, meshes); err != nil {
		return err
	}
	a.log.Info("wrote stl", "path", path, "meshes", len(meshes))
	return nil
}

// placementFile is the YAML layout written by WritePlacements.
type placementFile struct {
	Sets []placement.Set `yaml:"sets"`
}

// WritePlacements writes sets as YAML.
func WritePlacements(w io.Writer, sets []placement.Set) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(placementFile{Sets: sets}); err != nil {
		return fmt.Errorf("encode placements: %w", err)
	}
	return enc.Close()
}
