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

package main

import (
	"fmt"
	"os"

	"github.com/SnellerInc/encs/engine"
)

func runBenchmark(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		exitf("reading %s: %s\n", path, err)
	}

	rows := engine.Benchmark(data)
	if dashjson {
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"codec":           r.Codec,
				"ratio":           r.Ratio,
				"encode_mb_s":     r.EncodeMBPerSec,
				"decode_mb_s":     r.DecodeMBPerSec,
				"compressed_size": r.CompressedSize,
			})
		}
		printJSON(map[string]any{"results": out})
		return
	}

	fmt.Printf("%-12s %8s %12s %12s %10s\n", "codec", "ratio", "encode MB/s", "decode MB/s", "size")
	for _, r := range rows {
		fmt.Printf("%-12s %8.2f %12.2f %12.2f %10d\n", r.Codec, r.Ratio, r.EncodeMBPerSec, r.DecodeMBPerSec, r.CompressedSize)
	}
}
