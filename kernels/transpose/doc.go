// Package transpose computes output = transpose(input) for square n×n
// float32 matrices stored row-major in device buffers.
//
// Three kernels are provided:
//
//   - Naive reads and writes global memory directly. Reads are coalesced
//     across a warp; writes stride by n elements per lane and touch up to
//     32 cache lines per warp. It is the correctness baseline.
//   - SharedMemory stages each 64×64 tile in a padded 64×66 scratch tile so
//     both global passes are coalesced. The padding and a one-column shift
//     for columns 32..63 keep the column-wise scratch reads free of bank
//     conflicts.
//   - Optimal is SharedMemory with both four-step loops unrolled.
//
// All variants launch 64×16 thread blocks over an (n/64, n/64) grid; each
// thread moves a 1×4 strip of its block's tile. n must be a positive
// multiple of 64. This is not checked.
package transpose
