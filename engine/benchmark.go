// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package engine

import (
	"bytes"
	"sort"
	"time"

	"github.com/SnellerInc/encs/codec"
)

// BenchmarkRow is one codec's result from Benchmark.
type BenchmarkRow struct {
	Codec          string
	Ratio          float64
	EncodeMBPerSec float64
	DecodeMBPerSec float64
	CompressedSize int
}

// benchmarkDescriptors are the fixed parameters Benchmark runs:
// LZ4 fast, LZ4-HC, Zstd 3, Zstd 9, Snappy, Brotli 4, Deflate 6.
var benchmarkDescriptors = []codec.Descriptor{
	codec.Lz4Descriptor(false),
	codec.Lz4Descriptor(true),
	codec.ZstdDescriptor(3),
	codec.ZstdDescriptor(9),
	codec.SnappyDescriptor(),
	codec.BrotliDescriptor(4),
	codec.DeflateDescriptor(6),
}

// Benchmark runs every fixed codec/parameter combination over data in
// memory and returns the rows sorted by compression ratio descending.
// A codec that fails to compress or decompress data is omitted from
// the results rather than aborting the whole benchmark.
func Benchmark(data []byte) []BenchmarkRow {
	rows := make([]BenchmarkRow, 0, len(benchmarkDescriptors))
	for _, d := range benchmarkDescriptors {
		encStart := time.Now()
		compressed, err := codec.Compress(data, d)
		encElapsed := time.Since(encStart)
		if err != nil {
			continue
		}
		decStart := time.Now()
		plain, err := codec.Decompress(compressed, d, len(data))
		decElapsed := time.Since(decStart)
		if err != nil || !bytes.Equal(plain, data) {
			continue
		}
		ratio := 1.0
		if len(compressed) > 0 {
			ratio = float64(len(data)) / float64(len(compressed))
		}
		rows = append(rows, BenchmarkRow{
			Codec:          d.Name(),
			Ratio:          ratio,
			EncodeMBPerSec: throughputMBPerSec(len(data), encElapsed),
			DecodeMBPerSec: throughputMBPerSec(len(data), decElapsed),
			CompressedSize: len(compressed),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ratio > rows[j].Ratio })
	return rows
}

func throughputMBPerSec(n int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / (1024 * 1024) / elapsed.Seconds()
}
