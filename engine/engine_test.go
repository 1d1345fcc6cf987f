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
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SnellerInc/encs/errs"
)

func writeTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plaintext := []byte(strings.Repeat("Hello World! This is a test file for compression.", 100))
	in := writeTempFile(t, dir, "input.txt", plaintext)
	out := filepath.Join(dir, "output.encs")

	e := New(DefaultConfig())
	meta, err := e.CompressFile(in, out, Options{Target: e.Config.Target})
	if err != nil {
		t.Fatalf("CompressFile: %v", err)
	}
	if meta.CompressedSize >= meta.OriginalSize {
		t.Fatalf("expected compression to shrink S1-style input: %d >= %d", meta.CompressedSize, meta.OriginalSize)
	}
	if meta.Hashes.SHA256 == "" || meta.Hashes.BLAKE3 == "" {
		t.Fatalf("expected whole-file hashes to be populated")
	}

	decoded := filepath.Join(dir, "roundtrip.txt")
	if _, err := e.DecompressFile(out, decoded, nil); err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	got, err := os.ReadFile(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestCompressEmptyFileRejected(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "empty.txt", nil)
	out := filepath.Join(dir, "out.encs")

	e := New(DefaultConfig())
	_, err := e.CompressFile(in, out, Options{})
	var ee *errs.Error
	if !errors.As(err, &ee) || ee.Kind != errs.Configuration {
		t.Fatalf("expected Configuration error, got %v", err)
	}
}

func TestCompressMemoryLimitRejected(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "small.txt", []byte("not empty"))
	out := filepath.Join(dir, "out.encs")

	cfg := DefaultConfig()
	cfg.MaxThreads = 4
	cfg.MemoryLimit = 1 // impossibly small
	e := New(cfg)
	_, err := e.CompressFile(in, out, Options{})
	var ee *errs.Error
	if !errors.As(err, &ee) || ee.Kind != errs.MemoryLimit {
		t.Fatalf("expected MemoryLimit error, got %v", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatalf("expected output file to not be created when memory check fails")
	}
}

func TestTamperedContainerFailsDecode(t *testing.T) {
	dir := t.TempDir()
	plaintext := []byte(strings.Repeat("tamper me please", 200))
	in := writeTempFile(t, dir, "input.txt", plaintext)
	out := filepath.Join(dir, "output.encs")

	e := New(DefaultConfig())
	if _, err := e.CompressFile(in, out, Options{}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	raw[0], raw[1], raw[2], raw[3] = 'X', 'X', 'X', 'X'
	tampered := filepath.Join(dir, "tampered.encs")
	if err := os.WriteFile(tampered, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	decoded := filepath.Join(dir, "decoded.txt")
	_, err = e.DecompressFile(tampered, decoded, nil)
	var ee *errs.Error
	if !errors.As(err, &ee) || ee.Kind != errs.InvalidFormat {
		t.Fatalf("expected InvalidFormat for bad magic, got %v", err)
	}
}

func TestAnalyzeFileCaches(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "sample.txt", []byte(strings.Repeat("cache me\n", 1000)))

	e := New(DefaultConfig())
	first, err := e.AnalyzeFile(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.AnalyzeFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected cached analysis to be identical")
	}
}

func TestBenchmarkOrdering(t *testing.T) {
	data := []byte(strings.Repeat("Hello World! This is a test file for compression.", 100))
	rows := Benchmark(data)
	if len(rows) < 5 {
		t.Fatalf("expected at least five codecs to complete, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Ratio > rows[i-1].Ratio {
			t.Fatalf("results not sorted by ratio descending at index %d", i)
		}
	}
	for _, r := range rows {
		if r.EncodeMBPerSec <= 0 || r.DecodeMBPerSec <= 0 {
			t.Fatalf("codec %s: expected positive throughput, got enc=%f dec=%f", r.Codec, r.EncodeMBPerSec, r.DecodeMBPerSec)
		}
	}
}

func TestBenchmarkHighEntropyData(t *testing.T) {
	data := make([]byte, 64*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	rows := Benchmark(data)
	if len(rows) == 0 {
		t.Fatalf("expected at least one codec (Store-equivalent) to succeed on random data")
	}
}
