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

package codec

import (
	"bytes"
	"strings"
	"testing"
)

func allDescriptors() []Descriptor {
	return []Descriptor{
		StoreDescriptor(),
		ZstdDescriptor(3),
		ZstdDescriptor(15),
		Lz4Descriptor(false),
		Lz4Descriptor(true),
		SnappyDescriptor(),
		BrotliDescriptor(4),
		DeflateDescriptor(6),
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte(strings.Repeat("Hello World! This is a test file for compression.", 100)),
		bytes.Repeat([]byte{0}, 1<<20),
		[]byte("x"),
		[]byte("abcabcabcabcabcabcabcabcabcabcabcabcabc"),
	}
	for _, d := range allDescriptors() {
		for _, in := range inputs {
			comp, err := Compress(in, d)
			if err != nil {
				t.Fatalf("%s: compress: %v", d.Name(), err)
			}
			out, err := Decompress(comp, d, len(in))
			if err != nil {
				t.Fatalf("%s: decompress: %v", d.Name(), err)
			}
			if !bytes.Equal(in, out) {
				t.Fatalf("%s: round-trip mismatch (in %d bytes, out %d bytes)", d.Name(), len(in), len(out))
			}
		}
	}
}

func TestEmptyPlaintext(t *testing.T) {
	for _, d := range allDescriptors() {
		comp, err := Compress(nil, d)
		if err != nil {
			t.Fatalf("%s: compress empty: %v", d.Name(), err)
		}
		if len(comp) != 0 {
			t.Fatalf("%s: expected empty compressed output, got %d bytes", d.Name(), len(comp))
		}
		out, err := Decompress(comp, d, 0)
		if err != nil {
			t.Fatalf("%s: decompress empty: %v", d.Name(), err)
		}
		if len(out) != 0 {
			t.Fatalf("%s: expected empty decompressed output, got %d bytes", d.Name(), len(out))
		}
	}
}

func TestDescriptorEncodeDecode(t *testing.T) {
	for _, d := range allDescriptors() {
		enc := d.Encode()
		got, err := DecodeDescriptor(enc)
		if err != nil {
			t.Fatalf("%s: decode: %v", d.Name(), err)
		}
		if got != d {
			t.Fatalf("descriptor round-trip mismatch: %+v != %+v", got, d)
		}
	}
}

func TestTamperDetection(t *testing.T) {
	d := ZstdDescriptor(3)
	in := []byte(strings.Repeat("tamper me please", 50))
	comp, err := Compress(in, d)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), comp...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := Decompress(tampered, d, len(in)); err == nil {
		t.Fatalf("expected decompress of tampered payload to fail")
	}
}
