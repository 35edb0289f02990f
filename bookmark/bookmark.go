// Package bookmark reads and writes named locations in a small text format:
//
//	# comments run to the end of the line
//	location "Seahorse Valley" {
//		mandelbrot -0.8 0.15 0.1   # xMin yMax width
//		julia      -1.8 1.45 3.6
//		param      -0.75 0.1       # Julia constant c
//	}
//
// Fields may appear in any order; missing ones take the home location's
// value.
package bookmark

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	mandel "github.com/marben/mandelmaps"
)

var ErrNoLocations = errors.New("no locations")

var bookmarkLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}]`},
})

type file struct {
	Entries []*entry `@@*`
}

type entry struct {
	Pos lexer.Position

	Name   string   `"location" @String "{"`
	Fields []*field `@@* "}"`
}

type field struct {
	Pos lexer.Position

	Key    string    `@( "mandelbrot" | "julia" | "param" )`
	Values []float64 `@Number+`
}

var parser = participle.MustBuild[file](
	participle.Lexer(bookmarkLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// Parse reads every location in r.
func Parse(r io.Reader) ([]mandel.Location, error) {
	f, err := parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmarks: %w", err)
	}
	return f.locations()
}

// ParseString reads every location in s.
func ParseString(s string) ([]mandel.Location, error) {
	f, err := parser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse bookmarks: %w", err)
	}
	return f.locations()
}

// ParseFile reads every location in the named file.
func ParseFile(path string) ([]mandel.Location, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bookmarks: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

func (f *file) locations() ([]mandel.Location, error) {
	if len(f.Entries) == 0 {
		return nil, ErrNoLocations
	}
	locs := make([]mandel.Location, 0, len(f.Entries))
	for _, e := range f.Entries {
		loc, err := e.location()
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func (e *entry) location() (mandel.Location, error) {
	loc := mandel.DefaultLocation()
	loc.Name = e.Name
	seen := make(map[string]bool, 3)

	for _, fd := range e.Fields {
		if seen[fd.Key] {
			return loc, fmt.Errorf("%s: %q: duplicate %s", fd.Pos, e.Name, fd.Key)
		}
		seen[fd.Key] = true

		want := 3
		if fd.Key == "param" {
			want = 2
		}
		if len(fd.Values) != want {
			return loc, fmt.Errorf("%s: %q: %s takes %d numbers, got %d", fd.Pos, e.Name, fd.Key, want, len(fd.Values))
		}

		switch fd.Key {
		case "mandelbrot":
			loc.Mandelbrot = area(fd.Values)
		case "julia":
			loc.Julia = area(fd.Values)
		case "param":
			loc.JuliaParam = mandel.Param{Cx: fd.Values[0], Cy: fd.Values[1]}
		}
	}

	if !loc.Mandelbrot.Valid() || !loc.Julia.Valid() {
		return loc, fmt.Errorf("%s: %q: graph area width must be positive", e.Pos, e.Name)
	}
	return loc, nil
}

func area(v []float64) mandel.GraphArea {
	return mandel.GraphArea{XMin: v[0], YMax: v[1], Width: v[2]}
}

// Format writes locs in the format Parse reads.
func Format(w io.Writer, locs []mandel.Location) error {
	var b strings.Builder
	for i, loc := range locs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "location %s {\n", strconv.Quote(loc.Name))
		fmt.Fprintf(&b, "\tmandelbrot %s %s %s\n", num(loc.Mandelbrot.XMin), num(loc.Mandelbrot.YMax), num(loc.Mandelbrot.Width))
		fmt.Fprintf(&b, "\tjulia %s %s %s\n", num(loc.Julia.XMin), num(loc.Julia.YMax), num(loc.Julia.Width))
		fmt.Fprintf(&b, "\tparam %s %s\n", num(loc.JuliaParam.Cx), num(loc.JuliaParam.Cy))
		b.WriteString("}\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Find returns the location called name, ignoring case.
func Find(locs []mandel.Location, name string) (mandel.Location, bool) {
	for _, loc := range locs {
		if strings.EqualFold(loc.Name, name) {
			return loc, true
		}
	}
	return mandel.Location{}, false
}
