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

func runAnalyze(path string) {
	e := engine.New(engine.DefaultConfig())
	rec, err := e.AnalyzeFile(path)
	if err != nil {
		reportErr("analyze", err)
	}

	if dashjson {
		fields := map[string]any{
			"class":           rec.Class.String(),
			"compressibility": rec.Compressibility,
		}
		if dashdetailed {
			fields["entropy"] = rec.Entropy
			fields["confidence"] = rec.Confidence
			fields["executable"] = rec.Executable
			fields["text_ratio"] = rec.TextRatio
		}
		printJSON(fields)
		return
	}

	fmt.Printf("%s: class=%s compressibility=%.3f\n", path, rec.Class, rec.Compressibility)
	if dashdetailed {
		fmt.Printf("  entropy=%.3f confidence=%.2f executable=%v text_ratio=%.3f\n",
			rec.Entropy, rec.Confidence, rec.Executable, rec.TextRatio)
	}
}
