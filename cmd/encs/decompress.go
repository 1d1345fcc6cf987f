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

	"github.com/SnellerInc/encs/engine"
)

func runDecompress(in, out string) {
	if !confirmOverwrite(out) {
		exitf("aborted: %s exists\n", out)
	}

	e := engine.New(engine.DefaultConfig())
	chunks, err := e.DecompressFile(in, out, nil)
	if err != nil {
		reportErr("decompress", err)
	}

	if dashjson {
		printJSON(map[string]any{"chunks": chunks})
		return
	}
	fmt.Printf("%s -> %s: %d chunks\n", in, out, chunks)
}
