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
	"crypto/sha256"
	"encoding/hex"
	"hash/crc32"
	"io"

	"lukechampine.com/blake3"
)

// FileHashes holds the whole-file digests computed over the
// plaintext input, independently of chunking. They are metadata
// about the compression event and never appear inside the container.
type FileHashes struct {
	SHA256 string
	BLAKE3 string
	CRC32  uint32
}

type hashWriter interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

// HashingReader mirrors every byte read through it into SHA-256,
// BLAKE3, and CRC-32 accumulators, so compress_file can compute
// FileHashes in the same pass it feeds the compression pipeline
// rather than re-reading the input a second time.
type HashingReader struct {
	r      io.Reader
	sha256 hashWriter
	blake3 hashWriter
	crc    uint32
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{
		r:      r,
		sha256: sha256.New(),
		blake3: blake3.New(32, nil),
	}
}

func (h *HashingReader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	if n > 0 {
		h.sha256.Write(p[:n])
		h.blake3.Write(p[:n])
		h.crc = crc32.Update(h.crc, crc32.IEEETable, p[:n])
	}
	return n, err
}

// Sums returns the accumulated digests. It is only meaningful after
// the wrapped reader has been fully drained (read until io.EOF).
func (h *HashingReader) Sums() FileHashes {
	return FileHashes{
		SHA256: hex.EncodeToString(h.sha256.Sum(nil)),
		BLAKE3: hex.EncodeToString(h.blake3.Sum(nil)),
		CRC32:  h.crc,
	}
}
