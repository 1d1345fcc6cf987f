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

package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/errs"
)

func TestFrameRoundTrip(t *testing.T) {
	descs := []codec.Descriptor{
		codec.StoreDescriptor(),
		codec.ZstdDescriptor(3),
		codec.Lz4Descriptor(false),
		codec.SnappyDescriptor(),
		codec.BrotliDescriptor(4),
		codec.DeflateDescriptor(6),
	}
	plaintext := []byte(strings.Repeat("Hello World! This is a test file for compression.", 100))
	for _, d := range descs {
		frame, err := Encode(plaintext, d, 0)
		if err != nil {
			t.Fatalf("%s: Encode: %v", d.Name(), err)
		}
		if len(frame) < HeaderSize {
			t.Fatalf("%s: frame shorter than header", d.Name())
		}
		compLen := binary.LittleEndian.Uint32(frame[4:8])
		if int(compLen) != len(frame)-HeaderSize {
			t.Fatalf("%s: comp_len %d != payload length %d", d.Name(), compLen, len(frame)-HeaderSize)
		}
		got, err := Decode(frame, d)
		if err != nil {
			t.Fatalf("%s: Decode: %v", d.Name(), err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("%s: round-trip mismatch", d.Name())
		}
	}
}

func TestFrameTamperDetection(t *testing.T) {
	d := codec.ZstdDescriptor(3)
	plaintext := []byte(strings.Repeat("tamper detection test data", 50))
	frame, err := Encode(plaintext, d, 1)
	if err != nil {
		t.Fatal(err)
	}
	frame[len(frame)-1] ^= 0xFF
	_, err = Decode(frame, d)
	if err == nil {
		t.Fatalf("expected decode of tampered frame to fail")
	}
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errs.Error, got %T", err)
	}
	if e.Kind != errs.IntegrityViolation && e.Kind != errs.AlgorithmError {
		t.Fatalf("expected IntegrityViolation or AlgorithmError, got %v", e.Kind)
	}
}

func TestFrameShortHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, codec.StoreDescriptor())
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestFrameCompLenMismatch(t *testing.T) {
	d := codec.StoreDescriptor()
	frame, err := Encode([]byte("hello"), d, 0)
	if err != nil {
		t.Fatal(err)
	}
	frame = append(frame, 0xFF) // extra trailing byte not reflected in comp_len
	_, err = Decode(frame, d)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}
