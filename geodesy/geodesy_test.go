package geodesy

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

func TestToWGS84_ReferencePoints(t *testing.T) {
	tests := []struct {
		name     string
		grid     GridPoint
		lat, lon float64
	}{
		{
			name: "OS worked example (Caister water tower)",
			grid: GridPoint{Easting: 651409.903, Northing: 313177.270},
			lat:  52.657978,
			lon:  1.716052,
		},
		{
			name: "Birmingham city centre",
			grid: GridPoint{Easting: 406000, Northing: 286000},
			lat:  52.471902,
			lon:  -1.913100,
		},
		{
			name: "central meridian",
			grid: GridPoint{Easting: 400000, Northing: 100000},
			lat:  50.799561,
			lon:  -2.001367,
		},
		{
			name: "London",
			grid: GridPoint{Easting: 530000, Northing: 180000},
			lat:  51.503991,
			lon:  -0.128354,
		},
	}

	// 1e-5 degrees is roughly a metre.
	const tol = 1e-5
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToWGS84(tt.grid)
			if err != nil {
				t.Fatalf("ToWGS84 returned error: %v", err)
			}
			if math.Abs(got.Lat-tt.lat) > tol {
				t.Errorf("latitude: expected %.6f, got %.6f", tt.lat, got.Lat)
			}
			if math.Abs(got.Lon-tt.lon) > tol {
				t.Errorf("longitude: expected %.6f, got %.6f", tt.lon, got.Lon)
			}
		})
	}
}

func TestToWGS84_Deterministic(t *testing.T) {
	g := GridPoint{Easting: 407512.5, Northing: 287001.25}
	a := MustToWGS84(g)
	b := MustToWGS84(g)
	if a != b {
		t.Errorf("expected identical results, got %v and %v", a, b)
	}
}

func TestToWGS84_RejectsNaN(t *testing.T) {
	_, err := ToWGS84(GridPoint{Easting: math.NaN(), Northing: 100})
	if !errors.Is(err, ErrNonConvergence) {
		t.Errorf("expected ErrNonConvergence, got %v", err)
	}
}

func TestToWGS84_OutsideGrid(t *testing.T) {
	tests := []GridPoint{
		{Easting: 406000, Northing: 1e9},
		{Easting: 406000, Northing: 1e20},
		{Easting: -1, Northing: 286000},
		{Easting: 700001, Northing: 286000},
		{Easting: 406000, Northing: -0.5},
	}
	for _, g := range tests {
		if _, err := ToWGS84(g); !errors.Is(err, ErrOutsideGrid) {
			t.Errorf("%v: expected ErrOutsideGrid, got %v", g, err)
		}
		if g.InGrid() {
			t.Errorf("%v: InGrid should be false", g)
		}
	}

	corners := []GridPoint{{0, 0}, {GridMaxEasting, GridMaxNorthing}}
	for _, g := range corners {
		if !g.InGrid() {
			t.Errorf("%v: grid corner should be in grid", g)
		}
		if _, err := ToWGS84(g); err != nil {
			t.Errorf("%v: unexpected error %v", g, err)
		}
	}
}

func TestMustToWGS84_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-finite input")
		}
	}()
	MustToWGS84(GridPoint{Easting: math.Inf(1), Northing: 0})
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		a, b     GeoPoint
		expected float64
	}{
		{"due east on the equator", GeoPoint{0, 0}, GeoPoint{0, 1}, 90},
		{"due north", GeoPoint{10, 5}, GeoPoint{11, 5}, 0},
		{"due south", GeoPoint{11, 5}, GeoPoint{10, 5}, 180},
		{"due west on the equator", GeoPoint{0, 1}, GeoPoint{0, 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bearing(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBearing_Wraparound(t *testing.T) {
	across, err := Bearing(GeoPoint{52.5, 179.9}, GeoPoint{52.5, -179.9})
	if err != nil {
		t.Fatal(err)
	}
	local, err := Bearing(GeoPoint{52.5, -0.1}, GeoPoint{52.5, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(across-local) > 1e-9 {
		t.Errorf("antimeridian bearing %v differs from %v", across, local)
	}
	if across < 0 || across >= 360 {
		t.Errorf("bearing %v out of range", across)
	}
}

func TestBearing_MatchesOrb(t *testing.T) {
	pairs := [][2]GeoPoint{
		{{52.4800, -1.9000}, {52.4900, -1.8900}},
		{{52.4862, -1.8904}, {52.4790, -1.9120}},
		{{-33.86, 151.21}, {51.50, -0.12}},
	}
	for _, p := range pairs {
		got, err := Bearing(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		want := NormalizeBearing(geo.Bearing(p[0].Orb(), p[1].Orb()))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%v -> %v: expected %v, got %v", p[0], p[1], want, got)
		}
	}
}

func TestBearing_InvalidPoint(t *testing.T) {
	bad := []GeoPoint{
		{Lat: math.NaN(), Lon: 0},
		{Lat: 91, Lon: 0},
		{Lat: 0, Lon: -181},
		{Lat: math.Inf(-1), Lon: 0},
	}
	for _, p := range bad {
		if _, err := Bearing(p, GeoPoint{}); !errors.Is(err, ErrInvalidPoint) {
			t.Errorf("start %v: expected ErrInvalidPoint, got %v", p, err)
		}
		if _, err := Bearing(GeoPoint{}, p); !errors.Is(err, ErrInvalidPoint) {
			t.Errorf("end %v: expected ErrInvalidPoint, got %v", p, err)
		}
	}
}

func TestNormalizeBearing(t *testing.T) {
	tests := map[float64]float64{
		0:    0,
		360:  0,
		-90:  270,
		450:  90,
		-360: 0,
		359:  359,
		540:  180,
	}
	for in, want := range tests {
		if got := NormalizeBearing(in); got != want {
			t.Errorf("NormalizeBearing(%v): expected %v, got %v", in, want, got)
		}
	}
	if got := Reverse(300); got != 120 {
		t.Errorf("Reverse(300): expected 120, got %v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		bearing  float64
		expected Octant
	}{
		{0, North},
		{22.5, North},
		{22.6, NorthEast},
		{45, NorthEast},
		{67.5, North},
		{90, East},
		{135, SouthEast},
		{180, South},
		{225, SouthWest},
		{270, West},
		{315, NorthWest},
		{337.5, North},
		{359.9, North},
	}
	for _, tt := range tests {
		if got := Classify(tt.bearing); got != tt.expected {
			t.Errorf("Classify(%v): expected %s, got %s", tt.bearing, tt.expected, got)
		}
	}
}

func TestGeoPointOrbRoundTrip(t *testing.T) {
	p := GeoPoint{Lat: 52.48, Lon: -1.9}
	o := p.Orb()
	if o != (orb.Point{-1.9, 52.48}) {
		t.Errorf("unexpected orb point %v", o)
	}
	if FromOrb(o) != p {
		t.Errorf("expected %v, got %v", p, FromOrb(o))
	}
}
