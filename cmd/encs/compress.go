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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/engine"
	"github.com/SnellerInc/encs/errs"
	"github.com/SnellerInc/encs/selector"
)

func parseTarget(s string) selector.Target {
	switch s {
	case "speed":
		return selector.Speed
	case "ratio":
		return selector.Ratio
	case "memory":
		return selector.Memory
	default:
		return selector.Balanced
	}
}

func parseOverride(algorithm string, level int) *codec.Descriptor {
	var d codec.Descriptor
	switch algorithm {
	case "":
		return nil
	case "store":
		d = codec.StoreDescriptor()
	case "zstd":
		d = codec.ZstdDescriptor(level)
	case "lz4":
		d = codec.Lz4Descriptor(false)
	case "lz4-hc":
		d = codec.Lz4Descriptor(true)
	case "snappy":
		d = codec.SnappyDescriptor()
	case "brotli":
		d = codec.BrotliDescriptor(level)
	case "deflate":
		d = codec.DeflateDescriptor(level)
	default:
		exitf("unknown -algorithm %q\n", algorithm)
	}
	return &d
}

func runCompress(in, out string) {
	if !confirmOverwrite(out) {
		exitf("aborted: %s exists\n", out)
	}
	if dashstreaming {
		logf("note: -streaming has no distinct behavior; proceeding as usual")
	}

	e := engine.New(engine.DefaultConfig())
	opts := engine.Options{
		Target:   parseTarget(dashOptimize),
		Override: parseOverride(dashAlgorithm, dashLevel),
	}
	meta, err := e.CompressFile(in, out, opts)
	if err != nil {
		reportErr("compress", err)
	}

	if dashverify {
		if err := verifyRoundTrip(e, out, meta.Hashes.SHA256); err != nil {
			exitf("verify: %s\n", err)
		}
		logf("verify: round-trip hash matches")
	}

	ratio := float64(meta.OriginalSize) / float64(meta.CompressedSize)
	if dashjson {
		printJSON(map[string]any{
			"original_size":   meta.OriginalSize,
			"compressed_size": meta.CompressedSize,
			"chunks":          meta.Chunks,
			"codec":           meta.Descriptor.Name(),
			"class":           meta.Analysis.Class.String(),
			"ratio":           ratio,
			"sha256":          meta.Hashes.SHA256,
			"blake3":          meta.Hashes.BLAKE3,
			"crc32":           meta.Hashes.CRC32,
			"elapsed_ms":      meta.Elapsed.Milliseconds(),
		})
		return
	}
	fmt.Printf("%s -> %s: %s, %d -> %d bytes (%.2fx), %d chunks, %s\n",
		in, out, meta.Descriptor.Name(), meta.OriginalSize, meta.CompressedSize, ratio, meta.Chunks, meta.Elapsed)
}

// verifyRoundTrip implements the --verify semantics this
// implementation chose: decompress the freshly written container to
// a temporary file and compare its SHA-256 against the hash computed
// during compression, rather than the weaker re-stat-the-output-size
// check (see DESIGN.md for the reasoning).
func verifyRoundTrip(e *engine.Engine, containerPath, wantSHA256 string) error {
	tmp, err := os.CreateTemp(filepath.Dir(containerPath), "encs-verify-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := e.DecompressFile(containerPath, tmpPath, nil); err != nil {
		return err
	}
	gotSHA256, err := sha256Hex(tmpPath)
	if err != nil {
		return err
	}
	if gotSHA256 != wantSHA256 {
		return fmt.Errorf("sha256 mismatch after round-trip: got %s, want %s", gotSHA256, wantSHA256)
	}
	return nil
}

func sha256Hex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func reportErr(op string, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		if dashjson {
			printJSON(map[string]any{"error": e.Kind.String(), "op": e.Op, "message": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", op, e.Kind, err)
		}
		os.Exit(1)
	}
	exitf("%s: %s\n", op, err)
}

func printJSON(v map[string]any) {
	enc := newJSONEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		exitf("encoding JSON: %s\n", err)
	}
}
