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

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/SnellerInc/encs/chunk"
	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/errs"
)

func TestWriteReadRoundTrip(t *testing.T) {
	desc := codec.ZstdDescriptor(3)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	plaintexts := [][]byte{
		[]byte(strings.Repeat("alpha", 100)),
		[]byte(strings.Repeat("beta", 200)),
		[]byte("gamma"),
	}
	for i, p := range plaintexts {
		frame, err := chunk.Encode(p, desc, i)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WriteChunk(frame); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if r.Header.Version != FormatVersion {
		t.Fatalf("version = %d, want %d", r.Header.Version, FormatVersion)
	}
	if r.Header.Desc != desc {
		t.Fatalf("descriptor mismatch: got %v, want %v", r.Header.Desc, desc)
	}
	if r.Header.Chunks != len(plaintexts) {
		t.Fatalf("chunk count = %d, want %d", r.Header.Chunks, len(plaintexts))
	}
	for i, want := range plaintexts {
		frame, err := r.Next()
		if err != nil {
			t.Fatalf("chunk %d: Next: %v", i, err)
		}
		got, err := chunk.Decode(frame, desc)
		if err != nil {
			t.Fatalf("chunk %d: Decode: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("chunk %d: mismatch", i)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after last chunk, got %v", err)
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	_, err := NewReader(strings.NewReader("XXXX\x05\x00\x00\x00"))
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestReaderRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.Write([]byte{99, 0, 0, 0})
	_, err := NewReader(&buf)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestReaderRejectsTruncatedHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("ENCS"))
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestReaderRejectsTruncatedChunk(t *testing.T) {
	desc := codec.StoreDescriptor()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := chunk.Encode([]byte("hello world"), desc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChunk(frame); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	truncated := buf.Bytes()[:buf.Len()-3]
	r, err := NewReader(bytes.NewReader(truncated))
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Next()
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestEmptyContainer(t *testing.T) {
	desc := codec.SnappyDescriptor()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if r.Header.Chunks != 0 {
		t.Fatalf("expected 0 chunks, got %d", r.Header.Chunks)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
