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

// Package pipeline implements the read → compress → write and
// read → decompress → write data flows: a reader task feeds a bounded
// channel of plaintext chunks to a pool of blocking compression
// workers, whose frames are reassembled into original chunk order
// before being handed to the container writer. It uses plain channels
// and a sync.WaitGroup, no errgroup or other synchronization
// framework.
package pipeline

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/SnellerInc/encs/chunk"
	"github.com/SnellerInc/encs/codec"
)

const (
	tierSmallMax  = 16 * 1024 * 1024   // <= 16 MiB -> 1 MiB chunks
	tierMediumMax = 1024 * 1024 * 1024 // <= 1 GiB -> 4 MiB chunks
	chunkSmall    = 1 * 1024 * 1024
	chunkMedium   = 4 * 1024 * 1024
	chunkLarge    = 16 * 1024 * 1024

	// MaxChunkSize is the hard per-worker cap on an individual chunk,
	// regardless of the size tier.
	MaxChunkSize = 64 * 1024 * 1024

	// reassemblyWindow is the size of the fixed reassembly slots
	// array. It does not grow with the number of outstanding chunks;
	// memory is bounded by window, not by how far workers drift out
	// of order.
	reassemblyWindow = 64
)

// ChunkSize returns the chunk size the pipeline will use to stream a
// file of the given size, per the tiered chunk-size policy: files up
// to 16 MiB use 1 MiB chunks, up to 1 GiB use 4 MiB chunks, and larger
// files use 16 MiB chunks.
func ChunkSize(fileSize int64) int {
	switch {
	case fileSize <= tierSmallMax:
		return chunkSmall
	case fileSize <= tierMediumMax:
		return chunkMedium
	default:
		return chunkLarge
	}
}

// FitsMemoryLimit reports whether chunkSize*workers*3 stays within
// limit, the projected-memory-ceiling check the pipeline must pass
// before it opens any output file.
func FitsMemoryLimit(chunkSize, workers int, limit int64) bool {
	return int64(chunkSize)*int64(workers)*3 <= limit
}

// Progress receives "bytes advanced" notifications as the pipeline
// consumes input. It is an external collaborator; the pipeline never
// assumes anything about how a Progress renders its counter.
type Progress interface {
	Advance(n int64)
}

// NopProgress discards all advances.
type NopProgress struct{}

// Advance implements Progress.
func (NopProgress) Advance(int64) {}

// ChunkWriter is the subset of container.Writer the pipeline needs:
// something that accepts complete chunk frames in order.
type ChunkWriter interface {
	WriteChunk(frame []byte) error
}

// chunkJob is one unit of work handed from the reader to a worker.
type chunkJob struct {
	id        int
	plaintext []byte
}

// chunkResult is a worker's output, keyed by the same id its job
// carried, so the reassembly stage can restore read order regardless
// of which worker finished first.
type chunkResult struct {
	id    int
	frame []byte
	err   error
}

// Compress reads r in chunks sized by ChunkSize(size), compresses
// each chunk with desc across workers goroutines, and writes the
// resulting frames to w in original chunk order. It returns the
// number of chunks written and the first error encountered by the
// reader, any worker, or the writer.
func Compress(r io.Reader, w ChunkWriter, size int64, desc codec.Descriptor, workers int, prog Progress) (int, error) {
	if workers < 1 {
		workers = 1
	}
	if prog == nil {
		prog = NopProgress{}
	}
	chunkSize := ChunkSize(size)

	jobs := make(chan chunkJob, workers)
	results := make(chan chunkResult, workers)
	// inflight holds one token per chunk read but not yet released by
	// reassemble, so outstanding chunk ids never span more than
	// reassemblyWindow and never share a slot.
	inflight := make(chan struct{}, reassemblyWindow)

	var readErr error
	go func() {
		defer close(jobs)
		buf := make([]byte, chunkSize)
		id := 0
		for {
			n, err := io.ReadFull(r, buf)
			if n > 0 {
				plaintext := make([]byte, n)
				copy(plaintext, buf[:n])
				inflight <- struct{}{}
				jobs <- chunkJob{id: id, plaintext: plaintext}
				id++
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
			if err != nil {
				readErr = err
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				frame, err := chunk.Encode(job.plaintext, desc, job.id)
				results <- chunkResult{id: job.id, frame: frame, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	written, err := reassemble(results, inflight, w, prog)
	if err == nil && readErr != nil {
		err = readErr
	}
	return written, err
}

// reassemble collects chunkResults out of order and emits them to w
// in ascending chunk-id order using a fixed-size slots window, per
// the ordered-reassembly design: memory stays bounded by the window
// rather than growing with a map keyed by every outstanding id.
//
// Once the first error is observed, reassemble keeps draining results
// (so worker goroutines are never left blocked on a full channel) but
// stops writing to w and returns that error.
//
// Each chunk's inflight token is released once the chunk leaves its
// slot, or as soon as it is received after the first error.
func reassemble(results chan chunkResult, inflight chan struct{}, w ChunkWriter, prog Progress) (int, error) {
	slots := make([]*chunkResult, reassemblyWindow)
	next := 0
	written := 0
	var firstErr error

	flushReady := func() {
		for slots[next%reassemblyWindow] != nil && slots[next%reassemblyWindow].id == next {
			cur := slots[next%reassemblyWindow]
			slots[next%reassemblyWindow] = nil
			if firstErr == nil {
				if err := w.WriteChunk(cur.frame); err != nil {
					firstErr = err
				} else {
					prog.Advance(int64(binary.LittleEndian.Uint32(cur.frame[0:4])))
					written++
				}
			}
			next++
			<-inflight
		}
	}

	for res := range results {
		if res.err != nil || firstErr != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			<-inflight
			continue
		}
		r := res
		slots[res.id%reassemblyWindow] = &r
		flushReady()
	}
	return written, firstErr
}
