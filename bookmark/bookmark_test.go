package bookmark

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mandel "github.com/marben/mandelmaps"
)

const sample = `
# two places worth a visit
location "Seahorse Valley" {
	mandelbrot -0.8 0.15 0.1
	julia -1.8 1.45 3.6
	param -0.75 0.1
}

location "Deep" {
	param 0.285 +0.01   # only the constant
	mandelbrot -0.7435 0.1325 1.5e-3
}
`

func TestParse(t *testing.T) {
	locs, err := ParseString(sample)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}

	want := mandel.Location{
		Name:       "Seahorse Valley",
		Mandelbrot: mandel.GraphArea{XMin: -0.8, YMax: 0.15, Width: 0.1},
		Julia:      mandel.GraphArea{XMin: -1.8, YMax: 1.45, Width: 3.6},
		JuliaParam: mandel.Param{Cx: -0.75, Cy: 0.1},
	}
	if locs[0] != want {
		t.Errorf("locs[0] = %+v, want %+v", locs[0], want)
	}

	deep := locs[1]
	if deep.Julia != mandel.DefaultJuliaArea {
		t.Errorf("missing julia = %+v, want default", deep.Julia)
	}
	if deep.JuliaParam != (mandel.Param{Cx: 0.285, Cy: 0.01}) {
		t.Errorf("JuliaParam = %+v", deep.JuliaParam)
	}
	if deep.Mandelbrot.Width != 0.0015 {
		t.Errorf("Mandelbrot.Width = %v, want 0.0015", deep.Mandelbrot.Width)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated", `location "A" { param 1 2`, "parse bookmarks"},
		{"unknown field", `location "A" { zoom 3 }`, "parse bookmarks"},
		{"unquoted name", `location A { }`, "parse bookmarks"},
		{"short area", `location "A" { mandelbrot 1 2 }`, "takes 3 numbers, got 2"},
		{"long param", `location "A" { param 1 2 3 }`, "takes 2 numbers, got 3"},
		{"duplicate", `location "A" { param 1 2 param 3 4 }`, "duplicate param"},
		{"zero width", `location "A" { julia 0 0 0 }`, "width must be positive"},
		{"negative width", `location "A" { mandelbrot 0 0 -1 }`, "width must be positive"},
	}
	for _, tt := range tests {
		_, err := ParseString(tt.input)
		if err == nil {
			t.Errorf("%s: ParseString() succeeded", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: ParseString() error = %q, want it to contain %q", tt.name, err, tt.want)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n", "# nothing here\n"} {
		if _, err := ParseString(input); !errors.Is(err, ErrNoLocations) {
			t.Errorf("ParseString(%q) error = %v, want ErrNoLocations", input, err)
		}
	}
}

func TestFormatParsesBack(t *testing.T) {
	locs := mandel.Landmarks()
	locs = append(locs, mandel.Location{
		Name:       `Quote "inside"`,
		Mandelbrot: mandel.GraphArea{XMin: -0.743643887037151, YMax: 0.131825904205330, Width: 3.2e-13},
		Julia:      mandel.DefaultJuliaArea,
		JuliaParam: mandel.Param{Cx: -0.4, Cy: 0.6},
	})

	var buf bytes.Buffer
	if err := Format(&buf, locs); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() error = %v\n%s", err, buf.String())
	}
	if len(got) != len(locs) {
		t.Fatalf("got %d locations, want %d", len(got), len(locs))
	}
	for i := range locs {
		if got[i] != locs[i] {
			t.Errorf("location %d = %+v, want %+v", i, got[i], locs[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.txt")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	locs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(locs) != 2 {
		t.Errorf("got %d locations, want 2", len(locs))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(missing) error = %v, want not exist", err)
	}
}

func TestFind(t *testing.T) {
	locs := mandel.Landmarks()
	loc, ok := Find(locs, "seahorse valley")
	if !ok || loc.Name != "Seahorse Valley" {
		t.Errorf("Find(seahorse valley) = %q, %v", loc.Name, ok)
	}
	if _, ok := Find(locs, "Atlantis"); ok {
		t.Error("Find(Atlantis) found something")
	}
}
