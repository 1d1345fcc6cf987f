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

// Package chunk wraps codec.Compress/Decompress with the per-chunk
// framing described in the container format: orig_len | comp_len |
// crc32 | payload, all little-endian. It is the layer that enforces
// the CRC-32 integrity law on decode.
package chunk

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/errs"
)

// HeaderSize is the width of a chunk frame's fixed header, in bytes:
// orig_len(4) + comp_len(4) + crc32(4).
const HeaderSize = 12

// Encode builds a chunk frame from plaintext: orig_len | comp_len |
// crc32 | payload. chunkID appears only in error messages; it is not
// part of the frame.
func Encode(plaintext []byte, d codec.Descriptor, chunkID int) ([]byte, error) {
	sum := crc32.ChecksumIEEE(plaintext)
	payload, err := codec.Compress(plaintext, d)
	if err != nil {
		return nil, errs.New(errs.AlgorithmError, fmt.Sprintf("chunk %d: encode", chunkID), err).WithCodec(d.Name())
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(plaintext)))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(frame[8:12], sum)
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// Decode reverses Encode: it parses the frame header, decompresses
// the payload using d, and verifies the plaintext's CRC-32 against
// the value recorded in the frame.
func Decode(frame []byte, d codec.Descriptor) ([]byte, error) {
	if len(frame) < HeaderSize {
		return nil, errs.New(errs.InvalidFormat, "chunk.Decode",
			fmt.Errorf("frame of %d bytes shorter than %d-byte header", len(frame), HeaderSize))
	}
	origLen := binary.LittleEndian.Uint32(frame[0:4])
	compLen := binary.LittleEndian.Uint32(frame[4:8])
	wantCRC := binary.LittleEndian.Uint32(frame[8:12])
	payload := frame[HeaderSize:]
	if uint32(len(payload)) != compLen {
		return nil, errs.New(errs.InvalidFormat, "chunk.Decode",
			fmt.Errorf("comp_len %d disagrees with payload length %d", compLen, len(payload)))
	}
	plaintext, err := codec.Decompress(payload, d, int(origLen))
	if err != nil {
		return nil, errs.New(errs.AlgorithmError, "chunk.Decode", err).WithCodec(d.Name())
	}
	gotCRC := crc32.ChecksumIEEE(plaintext)
	if gotCRC != wantCRC {
		return nil, errs.New(errs.IntegrityViolation, "chunk.Decode",
			fmt.Errorf("crc32 mismatch: frame says %08x, plaintext is %08x", wantCRC, gotCRC))
	}
	return plaintext, nil
}

// FrameLen returns the total on-disk size of a frame whose payload is
// payloadLen bytes, i.e. the value the container writer prefixes each
// chunk with.
func FrameLen(payloadLen int) int { return HeaderSize + payloadLen }
