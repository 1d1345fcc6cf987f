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

// Package codec provides a unified interface wrapping third-party
// compression libraries, selected by a tagged-variant Descriptor.
package codec

import "fmt"

// Tag identifies which codec a Descriptor names.
type Tag uint8

const (
	Store Tag = iota
	Zstd
	Lz4
	Snappy
	Brotli
	Deflate
)

func (t Tag) String() string {
	switch t {
	case Store:
		return "store"
	case Zstd:
		return "zstd"
	case Lz4:
		return "lz4"
	case Snappy:
		return "snappy"
	case Brotli:
		return "brotli"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Descriptor is a tagged variant naming a codec and its parameters.
// Only the fields relevant to Tag are meaningful; the rest are zero.
// Descriptor is immutable once constructed and is the value serialized
// into the container (see Encode/Decode).
type Descriptor struct {
	Tag Tag

	// Level is the Zstd compression level (1..=22) or the
	// Deflate level (0..=9), depending on Tag.
	Level int
	// HighCompression selects LZ4's high-compression mode.
	HighCompression bool
	// Quality is the Brotli quality (0..=11).
	Quality int
}

// StoreDescriptor returns the identity ("no compression") descriptor.
func StoreDescriptor() Descriptor { return Descriptor{Tag: Store} }

// ZstdDescriptor returns a Zstd descriptor at the given level (1..=22).
func ZstdDescriptor(level int) Descriptor { return Descriptor{Tag: Zstd, Level: level} }

// Lz4Descriptor returns an Lz4 descriptor.
func Lz4Descriptor(highCompression bool) Descriptor {
	return Descriptor{Tag: Lz4, HighCompression: highCompression}
}

// SnappyDescriptor returns the Snappy descriptor.
func SnappyDescriptor() Descriptor { return Descriptor{Tag: Snappy} }

// BrotliDescriptor returns a Brotli descriptor at the given quality (0..=11).
func BrotliDescriptor(quality int) Descriptor { return Descriptor{Tag: Brotli, Quality: quality} }

// DeflateDescriptor returns a Deflate descriptor at the given level (0..=9).
func DeflateDescriptor(level int) Descriptor { return Descriptor{Tag: Deflate, Level: level} }

// Encode serializes the descriptor into a compact binary form:
// one tag byte, followed by zero or one parameter bytes depending
// on the tag. The encoding is stable across versions of this
// implementation for a fixed format version.
func (d Descriptor) Encode() []byte {
	switch d.Tag {
	case Store, Snappy:
		return []byte{byte(d.Tag)}
	case Zstd:
		return []byte{byte(d.Tag), byte(d.Level)}
	case Lz4:
		hc := byte(0)
		if d.HighCompression {
			hc = 1
		}
		return []byte{byte(d.Tag), hc}
	case Brotli:
		return []byte{byte(d.Tag), byte(d.Quality)}
	case Deflate:
		return []byte{byte(d.Tag), byte(d.Level)}
	default:
		return []byte{byte(d.Tag)}
	}
}

// DecodeDescriptor parses a descriptor previously produced by Encode.
// Readers must tolerate any valid descriptor emitted by a writer of
// the same container format version.
func DecodeDescriptor(buf []byte) (Descriptor, error) {
	if len(buf) == 0 {
		return Descriptor{}, fmt.Errorf("codec: empty descriptor")
	}
	tag := Tag(buf[0])
	switch tag {
	case Store, Snappy:
		return Descriptor{Tag: tag}, nil
	case Zstd:
		if len(buf) < 2 {
			return Descriptor{}, fmt.Errorf("codec: truncated zstd descriptor")
		}
		return Descriptor{Tag: tag, Level: int(buf[1])}, nil
	case Lz4:
		if len(buf) < 2 {
			return Descriptor{}, fmt.Errorf("codec: truncated lz4 descriptor")
		}
		return Descriptor{Tag: tag, HighCompression: buf[1] != 0}, nil
	case Brotli:
		if len(buf) < 2 {
			return Descriptor{}, fmt.Errorf("codec: truncated brotli descriptor")
		}
		return Descriptor{Tag: tag, Quality: int(buf[1])}, nil
	case Deflate:
		if len(buf) < 2 {
			return Descriptor{}, fmt.Errorf("codec: truncated deflate descriptor")
		}
		return Descriptor{Tag: tag, Level: int(buf[1])}, nil
	default:
		return Descriptor{}, fmt.Errorf("codec: unknown tag %d", buf[0])
	}
}

// Name returns the human-readable codec name, e.g. "zstd-12" or "store".
func (d Descriptor) Name() string {
	switch d.Tag {
	case Zstd:
		return fmt.Sprintf("zstd-%d", d.Level)
	case Lz4:
		if d.HighCompression {
			return "lz4-hc"
		}
		return "lz4"
	case Brotli:
		return fmt.Sprintf("brotli-%d", d.Quality)
	case Deflate:
		return fmt.Sprintf("deflate-%d", d.Level)
	default:
		return d.Tag.String()
	}
}
