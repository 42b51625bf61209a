// Command tangent evaluates a spline script, applies generation settings and
// writes the results.
//
//	tangent -script track.tangent -settings settings.yaml -stl track.stl \
//	        -placements placements.yaml -png track.png -save track.yaml
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/preview"
	"github.com/chazu/tangent/pkg/settings"
	"github.com/chazu/tangent/pkg/store"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "tangent: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	script     string
	load       string
	settings   string
	stl        string
	proxies    bool
	proxyShape ProxyShape
	placements string
	png        string
	save       string
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("tangent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.script, "script", "", "Spline script to evaluate")
	fs.StringVar(&o.load, "load", "", "Saved network to load instead of a script")
	fs.StringVar(&o.settings, "settings", "", "YAML settings library")
	fs.StringVar(&o.stl, "stl", "", "Write generated meshes to this STL file")
	fs.BoolVar(&o.proxies, "proxies", false, "Add stand-in shapes for placed objects to the STL")
	shape := fs.String("proxy-shape", string(ProxyBox), "Proxy geometry: box or cylinder")
	fs.StringVar(&o.placements, "placements", "", "Write placements to this YAML file")
	fs.StringVar(&o.png, "png", "", "Write a top-down preview to this PNG file")
	fs.StringVar(&o.save, "save", "", "Save the network to this YAML file")
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if (o.script == "") == (o.load == "") {
		return o, errors.New("exactly one of -script or -load is required")
	}
	var err error
	if o.proxyShape, err = ParseProxyShape(*shape); err != nil {
		return o, err
	}
	return o, nil
}

func run(args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	lib := settings.NewLibrary()
	if o.settings != "" {
		if lib, err = settings.LoadFile(o.settings); err != nil {
			return err
		}
		if err := checkSettings(lib, log); err != nil {
			return err
		}
	}

	app := NewApp(lib, log)
	var res Result
	if o.script != "" {
		source, err := os.ReadFile(o.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		res = app.Evaluate(string(source))
	} else {
		net, err := store.LoadFile(o.load, network.WithLogger(log))
		if err != nil {
			return err
		}
		res = app.Generate(net, Result{})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintf(stderr, "%s\n", e.Error())
		}
		return fmt.Errorf("%d error(s)", len(res.Errors))
	}

	if o.stl != "" {
		meshes := res.Meshes
		if o.proxies {
			extra, err := app.Proxies(res.Placements, o.proxyShape)
			if err != nil {
				return err
			}
			meshes = append(meshes, extra...)
		}
		if err := app.ExportSTL(o.stl, meshes); err != nil {
			return err
		}
	}
	if o.placements != "" {
		var buf bytes.Buffer
		if err := WritePlacements(&buf, res.Placements); err != nil {
			return err
		}
		if err := os.WriteFile(o.placements, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write placements: %w", err)
		}
	}
	if o.png != "" {
		var buf bytes.Buffer
		if err := preview.WritePNG(&buf, res.Network, preview.DefaultOptions()); err != nil {
			return err
		}
		if err := os.WriteFile(o.png, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	if o.save != "" {
		if err := store.SaveFile(o.save, res.Network); err != nil {
			return err
		}
	}
	return nil
}

// checkSettings logs validation findings and fails on any error.
func checkSettings(lib *settings.Library, log *slog.Logger) error {
	var failed bool
	for _, name := range lib.Names() {
		set, _ := lib.Get(name)
		for _, f := range settings.Validate(set) {
			if f.Severity == settings.SeverityError {
				failed = true
				log.Error("settings", "finding", f.Error())
			} else {
				log.Warn("settings", "finding", f.Error())
			}
		}
	}
	if failed {
		return errors.New("invalid settings")
	}
	return nil
}
