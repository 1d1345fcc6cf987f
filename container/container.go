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

// Package container implements the on-disk ENCS container: a magic
// header, a serialized codec descriptor, a chunk count, and a sequence
// of length-prefixed chunk frames (see package chunk for the frame
// layout itself). The reader is strict: any short read, magic
// mismatch, version mismatch, or deserialization failure is reported
// as errs.InvalidFormat with no partial recovery.
package container

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/errs"
)

// Magic is the 4-byte ASCII tag that opens every ENCS container.
var Magic = [4]byte{'E', 'N', 'C', 'S'}

// FormatVersion is the current container format version. Readers
// reject any other version.
const FormatVersion = 5

// Writer accumulates chunk frames and emits a complete ENCS container
// on Close. The chunk count must precede the chunk sequence on disk
// (§3), and it isn't known until streaming finishes, so WriteChunk
// stages frames in memory and Close performs the single buffered
// write of header, chunk count, and every frame.
//
// Writer is not safe for concurrent use; callers that fan compression
// out to a worker pool must serialize calls to WriteChunk themselves
// after restoring original chunk order (see package pipeline).
type Writer struct {
	w      io.Writer
	desc   codec.Descriptor
	frames [][]byte
}

// NewWriter returns a Writer that will emit a container with the
// given codec descriptor once Close is called.
func NewWriter(w io.Writer, desc codec.Descriptor) (*Writer, error) {
	return &Writer{w: w, desc: desc}, nil
}

// WriteChunk stages a complete chunk frame (as produced by
// chunk.Encode) for inclusion in the container. Frames must be
// supplied in the order they should appear in the container.
func (w *Writer) WriteChunk(frame []byte) error {
	w.frames = append(w.frames, frame)
	return nil
}

// Close writes the full container — magic, format version, codec
// descriptor, chunk count, and every staged frame prefixed by its
// 4-byte framed length — and flushes the underlying writer.
func (w *Writer) Close() error {
	bw := bufio.NewWriter(w.w)
	if _, err := bw.Write(Magic[:]); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], FormatVersion)
	if _, err := bw.Write(word[:]); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	enc := w.desc.Encode()
	binary.LittleEndian.PutUint32(word[:], uint32(len(enc)))
	if _, err := bw.Write(word[:]); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	if _, err := bw.Write(enc); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	binary.LittleEndian.PutUint32(word[:], uint32(len(w.frames)))
	if _, err := bw.Write(word[:]); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	for _, frame := range w.frames {
		binary.LittleEndian.PutUint32(word[:], uint32(len(frame)))
		if _, err := bw.Write(word[:]); err != nil {
			return errs.New(errs.FileWrite, "container.Close", err)
		}
		if _, err := bw.Write(frame); err != nil {
			return errs.New(errs.FileWrite, "container.Close", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.New(errs.FileWrite, "container.Close", err)
	}
	return nil
}

// Header describes the parsed container preamble.
type Header struct {
	Version int
	Desc    codec.Descriptor
	Chunks  int
}

// Reader reads an ENCS container strictly: any short read, magic
// mismatch, version mismatch, or descriptor deserialization failure
// produces errs.InvalidFormat and the Reader should not be reused.
type Reader struct {
	r      io.Reader
	Header Header
	read   int
}

// NewReader reads and validates the container header (magic, format
// version, descriptor, chunk count) and returns a Reader positioned
// at the first chunk frame.
func NewReader(r io.Reader) (*Reader, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errs.New(errs.InvalidFormat, "container.NewReader", fmt.Errorf("reading magic: %w", err))
	}
	if magic != Magic {
		return nil, errs.New(errs.InvalidFormat, "container.NewReader",
			fmt.Errorf("bad magic %q, want %q", magic, Magic))
	}
	version, err := readUint32(r, "format version")
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, errs.New(errs.InvalidFormat, "container.NewReader",
			fmt.Errorf("unsupported format version %d, want %d", version, FormatVersion))
	}
	descLen, err := readUint32(r, "descriptor length")
	if err != nil {
		return nil, err
	}
	descBuf := make([]byte, descLen)
	if _, err := io.ReadFull(r, descBuf); err != nil {
		return nil, errs.New(errs.InvalidFormat, "container.NewReader", fmt.Errorf("reading descriptor: %w", err))
	}
	desc, err := codec.DecodeDescriptor(descBuf)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "container.NewReader", fmt.Errorf("decoding descriptor: %w", err))
	}
	chunkCount, err := readUint32(r, "chunk count")
	if err != nil {
		return nil, err
	}
	return &Reader{
		r: r,
		Header: Header{
			Version: int(version),
			Desc:    desc,
			Chunks:  int(chunkCount),
		},
	}, nil
}

// Next reads the next framed chunk. It returns io.EOF once every
// chunk named by Header.Chunks has been read.
func (r *Reader) Next() ([]byte, error) {
	if r.read >= r.Header.Chunks {
		return nil, io.EOF
	}
	frameLen, err := readUint32(r.r, "framed length")
	if err != nil {
		return nil, err
	}
	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(r.r, frame); err != nil {
		return nil, errs.New(errs.InvalidFormat, "container.Next", fmt.Errorf("reading chunk frame: %w", err))
	}
	r.read++
	return frame, nil
}

func readUint32(r io.Reader, what string) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errs.New(errs.InvalidFormat, "container", fmt.Errorf("reading %s: %w", what, err))
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
