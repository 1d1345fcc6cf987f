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

package pipeline

import (
	"io"

	"github.com/SnellerInc/encs/chunk"
	"github.com/SnellerInc/encs/codec"
)

// ChunkReader is the subset of container.Reader the decode pipeline
// needs: something that yields successive chunk frames until io.EOF.
type ChunkReader interface {
	Next() ([]byte, error)
}

// Decompress drives the decode pipeline: read frame, decode frame,
// write plaintext, advance progress. Unlike Compress, decoding is
// strictly serial — each frame must be fully written before the next
// is read, since there is no reordering work to overlap.
func Decompress(r ChunkReader, w io.Writer, desc codec.Descriptor, prog Progress) (int, error) {
	if prog == nil {
		prog = NopProgress{}
	}
	n := 0
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		plaintext, err := chunk.Decode(frame, desc)
		if err != nil {
			return n, err
		}
		if _, err := w.Write(plaintext); err != nil {
			return n, err
		}
		prog.Advance(int64(len(plaintext)))
		n++
	}
}
