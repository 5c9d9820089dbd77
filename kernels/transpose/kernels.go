package transpose

import "github.com/cwbudde/algo-gpukern/device"

// Matrix element (row r, column c) lives at index c + n*r.
//
// Thread (x, y) of block (bx, by) owns input column i = x + 64*bx and the
// four input rows j..j+3 with j = 4*y + 64*by.

// sharedIndex maps a tile coordinate to the padded scratch tile. Columns
// 32..63 are shifted one slot right so the two 32-wide halves of a row fall
// in different banks when read column-wise.
func sharedIndex(row, col int) int {
	return row*tilePitch + col + col>>5
}

func naiveKernel(input, output []float32, n int) device.Kernel {
	return func(b *device.Block) {
		b.Threads(func(t device.Thread) {
			i := t.X + TileSize*b.Idx.X
			j := stripLen*t.Y + TileSize*b.Idx.Y
			for end := j + stripLen; j < end; j++ {
				output[j+n*i] = input[i+n*j]
			}
		})
	}
}

func sharedKernel(input, output []float32, n int) device.Kernel {
	return func(b *device.Block) {
		tile := b.Shared()

		b.Threads(func(t device.Thread) {
			i := t.X + TileSize*b.Idx.X
			j := stripLen*t.Y + TileSize*b.Idx.Y
			for k := range stripLen {
				tile[sharedIndex(stripLen*t.Y+k, t.X)] = input[i+n*(j+k)]
			}
		})

		b.Threads(func(t device.Thread) {
			i := t.X + TileSize*b.Idx.Y
			j := stripLen*t.Y + TileSize*b.Idx.X
			for k := range stripLen {
				output[i+n*(j+k)] = tile[sharedIndex(t.X, stripLen*t.Y+k)]
			}
		})
	}
}

func optimalKernel(input, output []float32, n int) device.Kernel {
	return func(b *device.Block) {
		tile := b.Shared()

		b.Threads(func(t device.Thread) {
			i := t.X + TileSize*b.Idx.X
			j := stripLen*t.Y + TileSize*b.Idx.Y
			r := stripLen * t.Y
			tile[sharedIndex(r, t.X)] = input[i+n*j]
			tile[sharedIndex(r+1, t.X)] = input[i+n*(j+1)]
			tile[sharedIndex(r+2, t.X)] = input[i+n*(j+2)]
			tile[sharedIndex(r+3, t.X)] = input[i+n*(j+3)]
		})

		b.Threads(func(t device.Thread) {
			i := t.X + TileSize*b.Idx.Y
			j := stripLen*t.Y + TileSize*b.Idx.X
			c := stripLen * t.Y
			output[i+n*j] = tile[sharedIndex(t.X, c)]
			output[i+n*(j+1)] = tile[sharedIndex(t.X, c+1)]
			output[i+n*(j+2)] = tile[sharedIndex(t.X, c+2)]
			output[i+n*(j+3)] = tile[sharedIndex(t.X, c+3)]
		})
	}
}
