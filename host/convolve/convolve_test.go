package convolve

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-gpukern/device"
	"github.com/cwbudde/algo-gpukern/host/reference"
	"github.com/cwbudde/algo-gpukern/internal/testutil"
	"github.com/cwbudde/algo-gpukern/kernels/normalize"
)

func normalized(x []float32) []float32 {
	peak := float32(0)
	for _, v := range x {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = v / peak
	}
	return out
}

func requireClose(t *testing.T, got, want []float32, eps float64) {
	t.Helper()
	d, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if d > eps {
		t.Fatalf("max abs diff %v > %v\ngot  %v\nwant %v", d, eps, got, want)
	}
}

func TestConvolveMatchesDirect(t *testing.T) {
	c, err := New(WithGeometry(normalize.Geometry{Blocks: 7, ThreadsPerBlock: 13}))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	signal := testutil.DeterministicNoise(1, 1, 300)
	impulse := testutil.DeterministicNoise(2, 0.5, 41)

	got, err := c.Convolve(signal, impulse)
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	if len(got) != len(signal)+len(impulse)-1 {
		t.Fatalf("len = %d, want %d", len(got), len(signal)+len(impulse)-1)
	}
	testutil.RequireFinite(t, got)
	requireClose(t, got, normalized(reference.Convolve(signal, impulse)), 1e-4)
}

func TestConvolvePeakIsOne(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	got, err := c.Convolve(testutil.DeterministicNoise(3, 4, 1000), testutil.DeterministicNoise(4, 1, 25))
	if err != nil {
		t.Fatal(err)
	}
	peak := 0.0
	for _, v := range got {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if math.Abs(peak-1) > 1e-6 {
		t.Fatalf("peak = %v, want 1", peak)
	}
	if c.Peak() <= 0 {
		t.Fatalf("Peak() = %v, want > 0", c.Peak())
	}
}

func TestConvolveIdentityImpulse(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	signal := []float32{0.5, -2, 1, 0.25}
	got, err := c.Convolve(signal, testutil.Impulse(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	requireClose(t, got, []float32{0.25, -1, 0.5, 0.125}, 1e-6)
}

func TestConvolveErrors(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Convolve(nil, []float32{1}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty signal: %v", err)
	}
	if _, err := c.Convolve([]float32{1}, nil); !errors.Is(err, ErrEmptyImpulse) {
		t.Errorf("empty impulse: %v", err)
	}
	if _, err := New(WithGeometry(normalize.Geometry{})); !errors.Is(err, normalize.ErrInvalidGeometry) {
		t.Errorf("zero geometry: %v", err)
	}
}

var errPlan = errors.New("plan failed")

func TestConvolveTransformError(t *testing.T) {
	c, err := New(WithTransform(func(int) (Transform, error) { return nil, errPlan }))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Convolve([]float32{1, 2}, []float32{1}); !errors.Is(err, errPlan) {
		t.Fatalf("got %v, want wrapped errPlan", err)
	}
}

// dft is an unnormalized O(n^2) transform pair, so the inverse carries a
// factor of n the normalization has to absorb.
type dft struct{ n int }

func (d dft) transform(dst, src []complex128, sign float64) {
	out := make([]complex128, d.n)
	for k := range out {
		var acc complex128
		for j, v := range src[:d.n] {
			acc += v * cmplx.Rect(1, sign*2*math.Pi*float64(j*k)/float64(d.n))
		}
		out[k] = acc
	}
	copy(dst, out)
}

func (d dft) Forward(dst, src []complex128) error {
	d.transform(dst, src, -1)
	return nil
}

func (d dft) Inverse(dst, src []complex128) error {
	d.transform(dst, src, 1)
	return nil
}

func TestConvolveCustomTransformShared(t *testing.T) {
	ctx := device.NewContext(device.WithWorkers(2))
	defer ctx.Close()

	calls := 0
	c, err := New(
		WithContext(ctx),
		WithTransform(func(n int) (Transform, error) {
			calls++
			return dft{n: n}, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	signal := []float32{1, 2, 3}
	impulse := []float32{0, 1, 0.5}
	for range 2 {
		got, err := c.Convolve(signal, impulse)
		if err != nil {
			t.Fatal(err)
		}
		requireClose(t, got, normalized(reference.Convolve(signal, impulse)), 1e-5)
	}
	if calls != 1 {
		t.Fatalf("transform factory called %d times, want 1 (cached)", calls)
	}

	// Close must leave a caller-owned context usable.
	_ = c.Close()
	if _, err := ctx.NewStream(); err != nil {
		t.Fatalf("context closed by Convolver: %v", err)
	}
}

func TestPaddedLength(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{1, 1, 1},
		{3, 3, 8},
		{4, 1, 4},
		{300, 41, 512},
		{512, 1, 512},
		{512, 2, 1024},
	}
	for _, tc := range cases {
		if got := PaddedLength(tc.a, tc.b); got != tc.want {
			t.Errorf("PaddedLength(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
