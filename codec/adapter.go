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
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/SnellerInc/encs/errs"
)

// algorithmError reports that a codec failed during Compress or
// Decompress. It always wraps as an *errs.Error with Kind
// errs.AlgorithmError.
func algorithmError(codec, op string, err error) error {
	return errs.New(errs.AlgorithmError, op, err).WithCodec(codec)
}

// zstd encoders are expensive to build, so one is cached per level;
// a single shared decoder suffices since zstd's format is
// self-describing and needs no per-level state.
var (
	zstdEncMu  sync.Mutex
	zstdEncs   = map[int]*zstd.Encoder{}
	zstdDecOne sync.Once
	zstdDec    *zstd.Decoder
)

func zstdEncoder(level int) (*zstd.Encoder, error) {
	zstdEncMu.Lock()
	defer zstdEncMu.Unlock()
	if enc, ok := zstdEncs[level]; ok {
		return enc, nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	zstdEncs[level] = enc
	return enc, nil
}

func zstdDecoder() (*zstd.Decoder, error) {
	var err error
	zstdDecOne.Do(func() {
		zstdDec, err = zstd.NewReader(nil)
	})
	return zstdDec, err
}

// lz4 compressors carry internal hash-table state that benefits from
// reuse across calls, so they are pooled the same way arloliu-mebo
// pools its lz4.Compressor.
var lz4Pool = sync.Pool{New: func() any { return new(lz4.Compressor) }}
var lz4HCPool = sync.Pool{New: func() any { return &lz4.CompressorHC{Level: lz4.Level9} }}

// Compress compresses plaintext using the codec and parameters named
// by d. Empty plaintext returns empty bytes without invoking the
// underlying codec.
func Compress(plaintext []byte, d Descriptor) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, nil
	}
	switch d.Tag {
	case Store:
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	case Zstd:
		enc, err := zstdEncoder(d.Level)
		if err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		return enc.EncodeAll(plaintext, make([]byte, 0, len(plaintext)/2)), nil
	case Lz4:
		return compressLz4(plaintext, d.HighCompression)
	case Snappy:
		return snappy.Encode(nil, plaintext), nil
	case Brotli:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, d.Quality)
		if _, err := w.Write(plaintext); err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		if err := w.Close(); err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		return buf.Bytes(), nil
	case Deflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, d.Level)
		if err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		if _, err := w.Write(plaintext); err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		if err := w.Close(); err != nil {
			return nil, algorithmError(d.Name(), "compress", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, algorithmError(d.Name(), "compress", fmt.Errorf("unknown codec tag %d", d.Tag))
	}
}

// lz4's block API returns n == 0 to mean "the input didn't compress;
// store it raw" rather than treating that as an error. A one-byte
// prefix (0 = raw, 1 = compressed) disambiguates the two cases on
// decode, since otherwise a coincidental length match could be
// mistaken for the raw fallback.
func compressLz4(plaintext []byte, hc bool) ([]byte, error) {
	dst := make([]byte, 1+lz4.CompressBlockBound(len(plaintext)))
	var n int
	var err error
	if hc {
		c := lz4HCPool.Get().(*lz4.CompressorHC)
		defer lz4HCPool.Put(c)
		n, err = c.CompressBlock(plaintext, dst[1:])
	} else {
		c := lz4Pool.Get().(*lz4.Compressor)
		defer lz4Pool.Put(c)
		n, err = c.CompressBlock(plaintext, dst[1:])
	}
	if err != nil {
		name := "lz4"
		if hc {
			name = "lz4-hc"
		}
		return nil, algorithmError(name, "compress", err)
	}
	if n == 0 {
		dst = dst[:1+len(plaintext)]
		dst[0] = 0
		copy(dst[1:], plaintext)
		return dst, nil
	}
	dst = dst[:1+n]
	dst[0] = 1
	return dst, nil
}

// Decompress reverses Compress. expectedPlaintextSize must equal the
// exact size of the plaintext produced by the matching Compress call;
// the Chunk Codec layer is the authority for this value, not the
// codec's own framing (if any).
func Decompress(payload []byte, d Descriptor, expectedPlaintextSize int) ([]byte, error) {
	if expectedPlaintextSize == 0 {
		return nil, nil
	}
	switch d.Tag {
	case Store:
		if len(payload) != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("store payload length %d != expected %d", len(payload), expectedPlaintextSize))
		}
		out := make([]byte, expectedPlaintextSize)
		copy(out, payload)
		return out, nil
	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		out, err := dec.DecodeAll(payload, make([]byte, 0, expectedPlaintextSize))
		if err != nil {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		if len(out) != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("decoded %d bytes, expected %d", len(out), expectedPlaintextSize))
		}
		return out, nil
	case Lz4:
		if len(payload) == 0 {
			return nil, algorithmError(d.Name(), "decompress", fmt.Errorf("empty lz4 payload"))
		}
		flag, body := payload[0], payload[1:]
		out := make([]byte, expectedPlaintextSize)
		if flag == 0 {
			if len(body) != expectedPlaintextSize {
				return nil, algorithmError(d.Name(), "decompress",
					fmt.Errorf("raw payload length %d != expected %d", len(body), expectedPlaintextSize))
			}
			copy(out, body)
			return out, nil
		}
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		if n != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("decoded %d bytes, expected %d", n, expectedPlaintextSize))
		}
		return out, nil
	case Snappy:
		out, err := snappy.Decode(make([]byte, 0, expectedPlaintextSize), payload)
		if err != nil {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		if len(out) != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("decoded %d bytes, expected %d", len(out), expectedPlaintextSize))
		}
		return out, nil
	case Brotli:
		r := brotli.NewReader(bytes.NewReader(payload))
		out := make([]byte, expectedPlaintextSize)
		n, err := io.ReadFull(r, out)
		if err != nil && err != io.ErrUnexpectedEOF {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		if n != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("decoded %d bytes, expected %d", n, expectedPlaintextSize))
		}
		return out, nil
	case Deflate:
		r := flate.NewReader(bytes.NewReader(payload))
		defer r.Close()
		out := make([]byte, expectedPlaintextSize)
		n, err := io.ReadFull(r, out)
		if err != nil && err != io.ErrUnexpectedEOF {
			return nil, algorithmError(d.Name(), "decompress", err)
		}
		if n != expectedPlaintextSize {
			return nil, algorithmError(d.Name(), "decompress",
				fmt.Errorf("decoded %d bytes, expected %d", n, expectedPlaintextSize))
		}
		return out, nil
	default:
		return nil, algorithmError(d.Name(), "decompress", fmt.Errorf("unknown codec tag %d", d.Tag))
	}
}
