package transpose

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cwbudde/algo-gpukern/device"
	"github.com/cwbudde/algo-gpukern/host/reference"
	"github.com/cwbudde/algo-gpukern/internal/testutil"
)

func newTestContext(t *testing.T) *device.Context {
	t.Helper()
	ctx := device.NewContext()
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func runTranspose(t *testing.T, ctx *device.Context, src []float32, n int, v Variant) []float32 {
	t.Helper()
	dst := make([]float32, n*n)
	if err := Host(ctx, dst, src, n, v); err != nil {
		t.Fatalf("Host(%v): %v", v, err)
	}
	return dst
}

func TestTransposeMatchesReference(t *testing.T) {
	ctx := newTestContext(t)

	for _, n := range []int{64, 128, 320} {
		src := testutil.DeterministicMatrix(int64(n), n)
		want := reference.Transpose(src, n)
		for _, v := range Variants() {
			t.Run(fmt.Sprintf("%v/n=%d", v, n), func(t *testing.T) {
				testutil.RequireEqual(t, runTranspose(t, ctx, src, n, v), want)
			})
		}
	}
}

func TestTransposeDefinition(t *testing.T) {
	ctx := newTestContext(t)

	const n = 192
	src := testutil.DeterministicMatrix(11, n)
	for _, v := range Variants() {
		got := runTranspose(t, ctx, src, n, v)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if got[i*n+j] != src[j*n+i] {
					t.Fatalf("%v: out[%d][%d] = %v, want in[%d][%d] = %v",
						v, i, j, got[i*n+j], j, i, src[j*n+i])
				}
			}
		}
	}
}

func TestTransposeInvolution(t *testing.T) {
	ctx := newTestContext(t)

	const n = 256
	src := testutil.DeterministicMatrix(5, n)
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			once := runTranspose(t, ctx, src, n, v)
			twice := runTranspose(t, ctx, once, n, v)
			testutil.RequireEqual(t, twice, src)
		})
	}
}

func TestVariantsAgree(t *testing.T) {
	ctx := newTestContext(t)

	const n = 512
	src := testutil.DeterministicMatrix(99, n)
	naive := runTranspose(t, ctx, src, n, Naive)
	testutil.RequireEqual(t, runTranspose(t, ctx, src, n, SharedMemory), naive)
	testutil.RequireEqual(t, runTranspose(t, ctx, src, n, Optimal), naive)
}

func TestTransposeLargeMatrix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 4096x4096 transpose in short mode")
	}
	ctx := newTestContext(t)

	const n = 4096
	src := make([]float32, n*n)
	for i := range src {
		src[i] = float32(i % 65521)
	}
	want := reference.Transpose(src, n)
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			testutil.RequireEqual(t, runTranspose(t, ctx, src, n, v), want)
		})
	}
}

func TestTransposeStreamOrdering(t *testing.T) {
	ctx := newTestContext(t)
	s, err := ctx.NewStream()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	const n = 128
	src := testutil.DeterministicMatrix(1, n)
	a, _ := device.NewBuffer[float32](n * n)
	b, _ := device.NewBuffer[float32](n * n)
	_ = a.Upload(src)

	// Two dependent launches on one stream need no host synchronization
	// in between.
	if err := Transpose(s, a, b, n, SharedMemory); err != nil {
		t.Fatal(err)
	}
	if err := Transpose(s, b, a, n, Naive); err != nil {
		t.Fatal(err)
	}
	_ = s.Synchronize()

	got := make([]float32, n*n)
	_ = a.Download(got)
	testutil.RequireEqual(t, got, src)
}

func TestUnknownVariantPanics(t *testing.T) {
	ctx := newTestContext(t)
	s, _ := ctx.NewStream()
	defer s.Close()

	a, _ := device.NewBuffer[float32](64 * 64)
	b, _ := device.NewBuffer[float32](64 * 64)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown variant")
		}
	}()
	_ = Transpose(s, a, b, 64, Variant(42))
}

func TestHostErrors(t *testing.T) {
	ctx := newTestContext(t)

	err := Host(ctx, make([]float32, 64*64), make([]float32, 64*64), 64, Variant(-1))
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("got %v, want ErrUnknownVariant", err)
	}
	if err := Host(ctx, make([]float32, 10), make([]float32, 64*64), 64, Naive); err == nil {
		t.Fatal("expected error for short dst")
	}
}

func TestParseVariant(t *testing.T) {
	cases := map[string]Variant{
		"naive":   Naive,
		"shmem":   SharedMemory,
		"Shared":  SharedMemory,
		"optimal": Optimal,
	}
	for in, want := range cases {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseVariant("fast"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("ParseVariant(fast) = %v", err)
	}
	for _, v := range Variants() {
		back, err := ParseVariant(v.String())
		if err != nil || back != v {
			t.Errorf("round trip of %v failed: %v, %v", v, back, err)
		}
	}
}

func TestLaunchConfig(t *testing.T) {
	cfg := LaunchConfig(256, SharedMemory)
	if cfg.Grid != (device.Dim{X: 4, Y: 4}) || cfg.Block != (device.Dim{X: 64, Y: 16}) {
		t.Fatalf("unexpected geometry %+v", cfg)
	}
	if cfg.Shared != 64*66 {
		t.Fatalf("Shared = %d, want %d", cfg.Shared, 64*66)
	}
	if LaunchConfig(256, Naive).Shared != 0 {
		t.Fatal("naive kernel should not request shared memory")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSharedIndexInjective(t *testing.T) {
	seen := make(map[int]bool, TileSize*TileSize)
	for r := range TileSize {
		for c := range TileSize {
			idx := sharedIndex(r, c)
			if idx < 0 || idx >= TileSize*tilePitch {
				t.Fatalf("sharedIndex(%d,%d) = %d out of range", r, c, idx)
			}
			if seen[idx] {
				t.Fatalf("sharedIndex(%d,%d) = %d collides", r, c, idx)
			}
			seen[idx] = true
		}
	}
}
