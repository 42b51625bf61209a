package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/settings"
	"github.com/chazu/tangent/pkg/spline"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Tangent Lisp source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: add-point -> add_point
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. ; line comments become // comments.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i)
			result = append(result, b[i:j]...)
			i = j
		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			// Preserve := (assignment operator).
			result = append(result, b[i], b[i+1])
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]):
			// Only when the hyphen sits between identifier characters.
			result = append(result, '_')
			i++
		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the double-quoted literal at i.
func skipQuoted(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSpline refers to a spline of the network under construction.
type sexpSpline struct {
	s *spline.Spline
}

func (s *sexpSpline) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(spline %q)", s.s.Name)
}
func (s *sexpSpline) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			result.positional = append(result.positional, args[i])
		case i+1 < len(args):
			result.kw[name] = args[i+1]
			i++
		default:
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSpline(s zygo.Sexp) (*spline.Spline, error) {
	if v, ok := s.(*sexpSpline); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected spline, got %T (%s)", s, s.SexpString(nil))
}

func toHandle(s zygo.Sexp) (int, error) {
	h, err := toInt(s)
	if err != nil {
		return 0, err
	}
	if h != 0 && h != 1 {
		return 0, fmt.Errorf("handle must be 0 or 1, got %d", h)
	}
	return h, nil
}

// ---------------------------------------------------------------------------
// Network builder
// ---------------------------------------------------------------------------

// builder holds the network that builtins populate during one evaluation.
type builder struct {
	net      *network.Network
	lib      *settings.Library
	warnings []EvalWarning
}

func (b *builder) warn(s *spline.Spline, format string, args ...any) {
	b.warnings = append(b.warnings, EvalWarning{
		Message: fmt.Sprintf(format, args...),
		Spline:  s.Name,
	})
}

// index returns the current index of s in the network.
func (b *builder) index(s *spline.Spline) (int, error) {
	for i, o := range b.net.Splines() {
		if o == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("spline %q was removed", s.Name)
}

// pointArgs reads the leading (spline index) pair of args and resolves the
// point.
func (b *builder) pointArgs(args []zygo.Sexp) (*spline.Spline, network.PointRef, *spline.ControlPoint, error) {
	if len(args) < 2 {
		return nil, network.PointRef{}, nil, fmt.Errorf("expected a spline and a point index")
	}
	s, err := toSpline(args[0])
	if err != nil {
		return nil, network.PointRef{}, nil, err
	}
	si, err := b.index(s)
	if err != nil {
		return nil, network.PointRef{}, nil, err
	}
	i, err := toInt(args[1])
	if err != nil {
		return nil, network.PointRef{}, nil, fmt.Errorf("point index: %w", err)
	}
	r := network.PointRef{Spline: si, Index: i}
	p, err := b.net.Point(r)
	if err != nil {
		return nil, network.PointRef{}, nil, err
	}
	return s, r, p, nil
}

// eulerArgs overrides the angles of e with any :pitch, :yaw and :roll
// keyword arguments.
func eulerArgs(kw map[string]zygo.Sexp, e geom.Euler) (geom.Euler, error) {
	for _, a := range []struct {
		name string
		dst  *float64
	}{
		{"pitch", &e.Pitch},
		{"yaw", &e.Yaw},
		{"roll", &e.Roll},
	} {
		v, ok := kw[a.name]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return e, fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dst = f
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Tangent DSL builtins into a zygomys
// environment. The builtins operate on b's network, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: geom.V(c[0], c[1], c[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (spline :at (vec3 0 0 0) :forward (vec3 0 0 1) :name "road")
	// -----------------------------------------------------------------------
	env.AddFunction("spline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		at, forward := geom.Zero, geom.Forward
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: at: %w", err)
			}
			at = vec
		}
		if v, ok := pa.kw["forward"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: forward: %w", err)
			}
			forward = vec
		}
		s := b.net.Spline(b.net.AddSpline(at, forward))
		if v, ok := pa.kw["name"]; ok {
			n, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: name: %w", err)
			}
			s.Name = n
		}
		return &sexpSpline{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (add-point s) -> index of the new point
	// -----------------------------------------------------------------------
	env.AddFunction("add_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("add-point requires a spline")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-point: %w", err)
		}
		if _, err := b.index(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("add-point: %w", err)
		}
		s.AddControlPoint()
		return &zygo.SexpInt{Val: int64(s.Len() - 1)}, nil
	})

	// -----------------------------------------------------------------------
	// (insert-point s i)
	// -----------------------------------------------------------------------
	env.AddFunction("insert_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("insert-point requires a spline and an index")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-point: %w", err)
		}
		if _, err := b.index(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-point: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-point: index: %w", err)
		}
		if _, err := s.InsertControlPoint(i); err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-point: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (remove-point s i)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		_, r, _, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-point: %w", err)
		}
		if err := b.net.RemovePoint(r); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-point: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (anchor s i (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("anchor", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("anchor requires a spline, an index and a position")
		}
		_, r, _, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("anchor: %w", err)
		}
		pos, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("anchor: position: %w", err)
		}
		if err := b.net.SetAnchor(r, pos); err != nil {
			return zygo.SexpNull, fmt.Errorf("anchor: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (handle s i 1 (vec3 0 0 2)), relative to the anchor
	// -----------------------------------------------------------------------
	env.AddFunction("handle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("handle requires a spline, an index, a handle and a vector")
		}
		_, _, p, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("handle: %w", err)
		}
		h, err := toHandle(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("handle: %w", err)
		}
		v, err := toVec3(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("handle: vector: %w", err)
		}
		p.SetRelativeHandle(h, v)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (magnitude s i 0 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("magnitude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("magnitude requires a spline, an index, a handle and a length")
		}
		_, _, p, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("magnitude: %w", err)
		}
		h, err := toHandle(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("magnitude: %w", err)
		}
		m, err := toFloat64(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("magnitude: length: %w", err)
		}
		p.SetHandleMagnitude(h, m)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (set-mode s i :aligned)
	// -----------------------------------------------------------------------
	env.AddFunction("set_mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("set-mode requires a spline, an index and a mode")
		}
		_, _, p, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-mode: %w", err)
		}
		kw, err := toKeywordString(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-mode: %w", err)
		}
		m, err := spline.ParseMode(kw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-mode: %w", err)
		}
		p.SetMode(m)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (orient s i :yaw 90 :pitch 0 :roll 15); missing angles keep their
	// current value. The point's junction turns with it.
	// -----------------------------------------------------------------------
	env.AddFunction("orient", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		_, r, p, err := b.pointArgs(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("orient: %w", err)
		}
		e, err := eulerArgs(pa.kw, p.EulerAngles())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("orient: %w", err)
		}
		if err := b.net.SetGroupRotation(r, e.Quat()); err != nil {
			return zygo.SexpNull, fmt.Errorf("orient: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (branch s i) -> new spline joined to point i of s
	// -----------------------------------------------------------------------
	env.AddFunction("branch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("branch requires a spline and an index")
		}
		_, r, _, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("branch: %w", err)
		}
		i, err := b.net.Branch(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("branch: %w", err)
		}
		return &sexpSpline{s: b.net.Spline(i)}, nil
	})

	// -----------------------------------------------------------------------
	// (connect a 0 b 2); joining two junctions is refused with a warning.
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("connect requires two spline and index pairs")
		}
		sa, ra, _, err := b.pointArgs(args[:2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: first point: %w", err)
		}
		_, rb, _, err := b.pointArgs(args[2:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: second point: %w", err)
		}
		err = b.net.Connect(ra, rb)
		switch {
		case errors.Is(err, network.ErrJunctionConflict):
			b.warn(sa, "connect %s and %s: both points already belong to junctions", ra, rb)
			return &zygo.SexpBool{Val: false}, nil
		case err != nil:
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		return &zygo.SexpBool{Val: true}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate-junction s i :yaw 45)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate_junction", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		_, r, _, err := b.pointArgs(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-junction: %w", err)
		}
		e, err := eulerArgs(pa.kw, geom.Euler{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-junction: %w", err)
		}
		if err := b.net.RotateGroup(r, e.Quat()); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-junction: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (scale-junction s i (vec3 2 1 2))
	// -----------------------------------------------------------------------
	env.AddFunction("scale_junction", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("scale-junction requires a spline, an index and a scale")
		}
		_, r, _, err := b.pointArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale-junction: %w", err)
		}
		v, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale-junction: scale: %w", err)
		}
		if err := b.net.ScaleGroup(r, v); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale-junction: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (use-settings s "road")
	// -----------------------------------------------------------------------
	env.AddFunction("use_settings", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("use-settings requires a spline and a settings name")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("use-settings: %w", err)
		}
		if _, err := b.index(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("use-settings: %w", err)
		}
		n, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("use-settings: name: %w", err)
		}
		assets := 0
		if b.lib != nil {
			set, err := b.lib.Get(n)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("use-settings: %w", err)
			}
			assets = set.AssetCount()
		}
		s.SetSettings(n, assets)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (set-active s 2 false)
	// -----------------------------------------------------------------------
	env.AddFunction("set_active", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("set-active requires a spline, a slot and a flag")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-active: %w", err)
		}
		if _, err := b.index(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-active: %w", err)
		}
		slot, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-active: slot: %w", err)
		}
		on, err := toBool(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-active: %w", err)
		}
		if slot < 0 {
			return zygo.SexpNull, fmt.Errorf("set-active: negative slot %d", slot)
		}
		s.SetActive(slot, on)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (rename s "main-street")
	// -----------------------------------------------------------------------
	env.AddFunction("rename", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rename requires a spline and a name")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: %w", err)
		}
		if _, err := b.index(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: %w", err)
		}
		n, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: %w", err)
		}
		s.Name = n
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (point-count s), (arc-length s)
	// -----------------------------------------------------------------------
	env.AddFunction("point_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("point-count requires a spline")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(s.Len())}, nil
	})

	env.AddFunction("arc_length", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("arc-length requires a spline")
		}
		s, err := toSpline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc-length: %w", err)
		}
		return &zygo.SexpFloat{Val: s.ArcLength()}, nil
	})
}
