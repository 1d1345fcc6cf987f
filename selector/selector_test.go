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

package selector

import (
	"testing"

	"github.com/SnellerInc/encs/analysis"
	"github.com/SnellerInc/encs/codec"
)

func TestSelectOverride(t *testing.T) {
	override := codec.BrotliDescriptor(11)
	rec := analysis.Record{Class: analysis.Text, Compressibility: 0.99}
	got := Select(rec, Options{Target: Speed, Override: &override})
	if got != override {
		t.Fatalf("override not respected: got %v", got)
	}
}

func TestSelectTextHighCompressibility(t *testing.T) {
	rec := analysis.Record{Class: analysis.Text, Compressibility: 0.9}
	cases := []struct {
		target Target
		want   codec.Descriptor
	}{
		{Speed, codec.Lz4Descriptor(false)},
		{Ratio, codec.ZstdDescriptor(15)},
		{Memory, codec.DeflateDescriptor(6)},
		{Balanced, codec.ZstdDescriptor(6)},
	}
	for _, c := range cases {
		got := Select(rec, Options{Target: c.target})
		if got != c.want {
			t.Fatalf("target %v: got %v, want %v", c.target, got, c.want)
		}
	}
}

func TestSelectBinaryModeratelyCompressible(t *testing.T) {
	rec := analysis.Record{Class: analysis.Binary, Compressibility: 0.6}
	got := Select(rec, Options{Target: Ratio})
	want := codec.ZstdDescriptor(12)
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSelectImageAndArchiveAlwaysStore(t *testing.T) {
	for _, class := range []analysis.Class{analysis.Image, analysis.Archive} {
		rec := analysis.Record{Class: class, Compressibility: 0.9, Entropy: 0.1}
		for _, target := range []Target{Speed, Ratio, Memory, Balanced} {
			got := Select(rec, Options{Target: target})
			if got != codec.StoreDescriptor() {
				t.Fatalf("class %v target %v: got %v, want Store", class, target, got)
			}
		}
	}
}

func TestSelectHighEntropyLowCompressibilityStores(t *testing.T) {
	rec := analysis.Record{Class: analysis.Binary, Entropy: 0.99, Compressibility: 0.05}
	got := Select(rec, Options{Target: Ratio})
	if got != codec.StoreDescriptor() {
		t.Fatalf("got %v, want Store", got)
	}
}

func TestSelectFallback(t *testing.T) {
	rec := analysis.Record{Class: analysis.Unknown, Entropy: 0.5, Compressibility: 0.4}
	got := Select(rec, Options{Target: Memory})
	want := codec.SnappyDescriptor()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTargetString(t *testing.T) {
	cases := map[Target]string{Speed: "speed", Ratio: "ratio", Memory: "memory", Balanced: "balanced"}
	for target, want := range cases {
		if got := target.String(); got != want {
			t.Fatalf("Target(%d).String() = %q, want %q", target, got, want)
		}
	}
}
