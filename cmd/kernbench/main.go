// Command kernbench runs the device kernels on generated data, times them
// and optionally checks the results against the host reference.
//
// Usage:
//
//	kernbench [flags]
//
// Examples:
//
//	kernbench -n 512,1024,4096
//	kernbench -n 2048 -variant shmem -verify
//	kernbench -length 100000 -impulse 513 -blocks 7 -threads 13 -verify
//	kernbench -info
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-gpukern/device"
	"github.com/cwbudde/algo-gpukern/host/convolve"
	"github.com/cwbudde/algo-gpukern/host/reference"
	"github.com/cwbudde/algo-gpukern/kernels/normalize"
	"github.com/cwbudde/algo-gpukern/kernels/transpose"
)

func main() {
	sizes := flag.String("n", "512,1024", "comma-separated matrix sizes (multiples of 64)")
	variant := flag.String("variant", "all", "transpose variant: all, naive, shmem, optimal")
	length := flag.Int("length", 1<<16, "signal length for the convolution run (0 disables it)")
	impulseLen := flag.Int("impulse", 257, "impulse response length")
	blocks := flag.Int("blocks", 64, "blocks per launch for the convolution stages")
	threads := flag.Int("threads", 512, "threads per block for the convolution stages")
	workers := flag.Int("workers", 0, "device workers (0 = one per CPU)")
	verify := flag.Bool("verify", false, "check results against the host reference")
	info := flag.Bool("info", false, "print the device description and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kernbench [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Times the transpose kernels and the normalized convolution pipeline.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := device.NewContext(device.WithWorkers(*workers))
	defer ctx.Close()

	if *info {
		printInfo(ctx.Device())
		return
	}

	ns, err := parseSizes(*sizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	variants, err := parseVariants(*variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := runTranspose(ctx, ns, variants, *verify); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *length > 0 {
		g := normalize.Geometry{Blocks: *blocks, ThreadsPerBlock: *threads}
		if err := runConvolve(ctx, *length, *impulseLen, g, *verify); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printInfo(info device.Info) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", info.Name)
	fmt.Fprintf(tw, "Vendor\t%s\n", info.Vendor)
	fmt.Fprintf(tw, "Architecture\t%s\n", info.Architecture)
	fmt.Fprintf(tw, "SIMD\t%s\n", info.SIMD)
	fmt.Fprintf(tw, "Workers\t%d\n", info.Workers)
	fmt.Fprintf(tw, "Warp size\t%d\n", info.WarpSize)
	fmt.Fprintf(tw, "Max threads/block\t%d\n", info.MaxThreadsPerBlock)
	fmt.Fprintf(tw, "Shared memory\t%d bytes\n", info.SharedMemoryBytes)
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", field, err)
		}
		if n <= 0 || n%transpose.TileSize != 0 {
			return nil, fmt.Errorf("size %d is not a positive multiple of %d", n, transpose.TileSize)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseVariants(s string) ([]transpose.Variant, error) {
	if strings.EqualFold(s, "all") {
		return transpose.Variants(), nil
	}
	v, err := transpose.ParseVariant(s)
	if err != nil {
		return nil, err
	}
	return []transpose.Variant{v}, nil
}

func runTranspose(ctx *device.Context, sizes []int, variants []transpose.Variant, verify bool) error {
	s, err := ctx.NewStream()
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Variant\tN\tTime\tGB/s\tVerified\n")
	fmt.Fprintf(tw, "-------\t-\t----\t----\t--------\n")

	for _, n := range sizes {
		host := make([]float32, n*n)
		for i := range host {
			host[i] = float32(i)
		}
		in, err := device.NewBuffer[float32](n * n)
		if err != nil {
			return err
		}
		out, err := device.NewBuffer[float32](n * n)
		if err != nil {
			return err
		}
		if err := in.Upload(host); err != nil {
			return err
		}

		var want []float32
		if verify {
			want = reference.Transpose(host, n)
		}

		for _, v := range variants {
			start := time.Now()
			if err := transpose.Transpose(s, in, out, n, v); err != nil {
				return err
			}
			if err := s.Synchronize(); err != nil {
				return err
			}
			elapsed := time.Since(start)
			gbps := float64(2*4*n*n) / elapsed.Seconds() / 1e9

			status := "-"
			if verify {
				got := make([]float32, n*n)
				if err := out.Download(got); err != nil {
					return err
				}
				status = "ok"
				for i := range got {
					if got[i] != want[i] {
						status = fmt.Sprintf("FAIL at %d", i)
						break
					}
				}
			}
			fmt.Fprintf(tw, "%v\t%d\t%v\t%.2f\t%s\n", v, n, elapsed.Round(time.Microsecond), gbps, status)
		}
	}
	return tw.Flush()
}

func runConvolve(ctx *device.Context, length, impulseLen int, g normalize.Geometry, verify bool) error {
	c, err := convolve.New(convolve.WithContext(ctx), convolve.WithGeometry(g))
	if err != nil {
		return err
	}
	defer c.Close()

	signal := make([]float32, length)
	for i := range signal {
		signal[i] = float32(math.Sin(2*math.Pi*float64(i)/97) + 0.25*math.Sin(2*math.Pi*float64(i)/13))
	}
	impulse := make([]float32, impulseLen)
	for i := range impulse {
		impulse[i] = float32(math.Exp(-float64(i) / float64(impulseLen/4+1)))
	}

	start := time.Now()
	out, err := c.Convolve(signal, impulse)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	n := convolve.PaddedLength(length, impulseLen)
	fmt.Printf("\nConvolution: %d x %d samples, padded %d, geometry %dx%d\n",
		length, impulseLen, n, g.Blocks, g.ThreadsPerBlock)
	fmt.Printf("  launches: reduce %d, divide %d\n",
		normalize.ReduceLaunches(n, g), normalize.Launches(n, g))
	fmt.Printf("  time: %v, raw peak %.6g\n", elapsed.Round(time.Microsecond), c.Peak())

	if verify {
		if length*impulseLen > 1<<26 {
			fmt.Printf("  verify: skipped (direct reference too large)\n")
			return nil
		}
		want := reference.Convolve(signal, impulse)
		peak := 0.0
		for _, v := range want {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
		maxErr := 0.0
		for i := range out {
			maxErr = math.Max(maxErr, math.Abs(float64(out[i])-float64(want[i])/peak))
		}
		fmt.Printf("  verify: max abs error %.3g\n", maxErr)
	}
	return nil
}
