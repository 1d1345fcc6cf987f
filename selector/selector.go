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

// Package selector picks a codec.Descriptor for a given analysis.Record
// and optimization Target by way of a fixed, deterministic decision
// table. It never performs I/O and never mutates its inputs.
package selector

import (
	"github.com/SnellerInc/encs/analysis"
	"github.com/SnellerInc/encs/codec"
)

// Target names what the selector should optimize for when no explicit
// codec override is supplied.
type Target int

const (
	Balanced Target = iota
	Speed
	Ratio
	Memory
)

func (t Target) String() string {
	switch t {
	case Speed:
		return "speed"
	case Ratio:
		return "ratio"
	case Memory:
		return "memory"
	default:
		return "balanced"
	}
}

// Options controls a single selection. When Override is non-nil, it
// is returned unchanged by Select regardless of the analysis record.
type Options struct {
	Target   Target
	Override *codec.Descriptor
}

// Select returns the codec descriptor for rec under opts. If
// opts.Override is non-nil, it is returned unchanged: the caller's
// explicit choice always wins. Otherwise Select applies the decision
// table from the codec selection design: the first matching row,
// keyed by file-type class and compressibility/entropy thresholds,
// determines the descriptor for the requested Target.
func Select(rec analysis.Record, opts Options) codec.Descriptor {
	if opts.Override != nil {
		return *opts.Override
	}

	switch {
	case rec.Class == analysis.Text && rec.Compressibility > 0.8:
		return byTarget(opts.Target, codec.Lz4Descriptor(false), codec.ZstdDescriptor(15), codec.DeflateDescriptor(6), codec.ZstdDescriptor(6))

	case rec.Class == analysis.Binary && rec.Compressibility > 0.5:
		return byTarget(opts.Target, codec.Lz4Descriptor(false), codec.ZstdDescriptor(12), codec.SnappyDescriptor(), codec.ZstdDescriptor(3))

	case rec.Class == analysis.Image || rec.Class == analysis.Archive:
		return codec.StoreDescriptor()

	case rec.Entropy > 0.95 && rec.Compressibility < 0.1:
		return codec.StoreDescriptor()

	default:
		return byTarget(opts.Target, codec.Lz4Descriptor(false), codec.ZstdDescriptor(9), codec.SnappyDescriptor(), codec.ZstdDescriptor(3))
	}
}

// byTarget picks among the four per-target descriptors of a single
// decision-table row.
func byTarget(t Target, speed, ratio, memory, balanced codec.Descriptor) codec.Descriptor {
	switch t {
	case Speed:
		return speed
	case Ratio:
		return ratio
	case Memory:
		return memory
	default:
		return balanced
	}
}
