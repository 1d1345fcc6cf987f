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

// Package engine is the top-level façade: it holds configuration and
// an analysis cache, and exposes the whole-file operations
// (compress, decompress, analyze, benchmark) that compose the lower
// layers (analysis, selector, codec, chunk, container, pipeline).
package engine

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/SnellerInc/encs/analysis"
	"github.com/SnellerInc/encs/codec"
	"github.com/SnellerInc/encs/container"
	"github.com/SnellerInc/encs/errs"
	"github.com/SnellerInc/encs/pipeline"
	"github.com/SnellerInc/encs/selector"
)

// Config holds the engine's tunables. It is read-mostly: callers
// typically build one Config at startup and share it across
// operations without further mutation, so a plain struct (rather
// than a mutex-guarded one) is sufficient.
type Config struct {
	MaxThreads  int
	MemoryLimit int64
	Target      selector.Target
}

// DefaultConfig returns a Config with a worker count derived from the
// host's CPU count and a memory ceiling derived from host DRAM.
func DefaultConfig() Config {
	return Config{
		MaxThreads:  defaultThreads(),
		MemoryLimit: pipeline.DefaultMemoryLimit(),
		Target:      selector.Balanced,
	}
}

// Engine is the façade described in the component design: Config plus
// an in-memory analysis cache.
type Engine struct {
	Config Config
	cache  *analysisCache
}

// New returns an Engine ready to run operations.
func New(cfg Config) *Engine {
	return &Engine{Config: cfg, cache: newAnalysisCache()}
}

// Options controls a single compress_file call.
type Options struct {
	Target   selector.Target
	Override *codec.Descriptor
	Progress pipeline.Progress
}

// Metadata is returned from CompressFile: metrics and hashes about
// the compression event. It is never persisted inside the container.
type Metadata struct {
	OriginalSize   int64
	CompressedSize int64
	Chunks         int
	Descriptor     codec.Descriptor
	Analysis       analysis.Record
	Hashes         FileHashes
	Elapsed        time.Duration
}

// CompressFile runs the full pipeline over input and writes an ENCS
// container to output: stat, memory-ceiling check, analyze, select,
// stream-compress, and a single hashing pass over the plaintext.
func (e *Engine) CompressFile(input, output string, opts Options) (Metadata, error) {
	info, err := os.Stat(input)
	if err != nil {
		return Metadata{}, errs.New(errs.FileRead, "compress_file", err).WithPath(input)
	}
	if !info.Mode().IsRegular() {
		return Metadata{}, errs.New(errs.Configuration, "compress_file",
			fmt.Errorf("not a regular file")).WithPath(input)
	}
	if info.Size() == 0 {
		return Metadata{}, errs.New(errs.Configuration, "compress_file",
			fmt.Errorf("empty file")).WithPath(input)
	}

	chunkSize := pipeline.ChunkSize(info.Size())
	workers := e.Config.MaxThreads
	if workers < 1 {
		workers = 1
	}
	if !pipeline.FitsMemoryLimit(chunkSize, workers, e.Config.MemoryLimit) {
		return Metadata{}, errs.New(errs.MemoryLimit, "compress_file",
			fmt.Errorf("chunk_size(%d) * workers(%d) * 3 exceeds memory_limit(%d)",
				chunkSize, workers, e.Config.MemoryLimit)).WithPath(input)
	}

	start := time.Now()

	rec, err := e.AnalyzeFile(input)
	if err != nil {
		return Metadata{}, err
	}

	target := opts.Target
	if target == selector.Balanced && e.Config.Target != selector.Balanced {
		target = e.Config.Target
	}
	desc := selector.Select(rec, selector.Options{Target: target, Override: opts.Override})

	in, err := os.Open(input)
	if err != nil {
		return Metadata{}, errs.New(errs.FileRead, "compress_file", err).WithPath(input)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return Metadata{}, errs.New(errs.FileWrite, "compress_file", err).WithPath(output)
	}
	defer out.Close()

	w, err := container.NewWriter(out, desc)
	if err != nil {
		return Metadata{}, errs.New(errs.FileWrite, "compress_file", err).WithPath(output)
	}

	hashed := NewHashingReader(in)
	chunks, err := pipeline.Compress(hashed, w, info.Size(), desc, workers, opts.Progress)
	if err != nil {
		return Metadata{}, errs.New(errs.AlgorithmError, "compress_file", err).
			WithPath(input).WithCodec(desc.Name())
	}
	if err := w.Close(); err != nil {
		return Metadata{}, errs.New(errs.FileWrite, "compress_file", err).WithPath(output)
	}

	outInfo, err := os.Stat(output)
	if err != nil {
		return Metadata{}, errs.New(errs.FileRead, "compress_file", err).WithPath(output)
	}

	return Metadata{
		OriginalSize:   info.Size(),
		CompressedSize: outInfo.Size(),
		Chunks:         chunks,
		Descriptor:     desc,
		Analysis:       rec,
		Hashes:         hashed.Sums(),
		Elapsed:        time.Since(start),
	}, nil
}

// DecompressFile runs the decode pipeline: open, parse the container
// header, decode every frame, write the plaintext.
func (e *Engine) DecompressFile(input, output string, prog pipeline.Progress) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, errs.New(errs.FileRead, "decompress_file", err).WithPath(input)
	}
	defer in.Close()

	r, err := container.NewReader(in)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, errs.New(errs.FileWrite, "decompress_file", err).WithPath(output)
	}
	defer out.Close()

	n, err := pipeline.Decompress(r, out, r.Header.Desc, prog)
	if err != nil {
		return n, err
	}
	return n, nil
}

// AnalyzeFile samples path and classifies it, consulting the
// analysis cache first. A cache miss samples the file and stores the
// result; correctness never depends on a hit.
func (e *Engine) AnalyzeFile(path string) (analysis.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return analysis.Record{}, errs.New(errs.FileRead, "analyze_file", err).WithPath(path)
	}
	key := cacheKeyFor(path, info.Size(), info.ModTime())
	if rec, ok := e.cache.get(key); ok {
		return rec, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return analysis.Record{}, errs.New(errs.FileRead, "analyze_file", err).WithPath(path)
	}
	defer f.Close()

	sample := make([]byte, analysis.SampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return analysis.Record{}, errs.New(errs.FileRead, "analyze_file", err).WithPath(path)
	}
	rec := analysis.Analyze(sample[:n])
	e.cache.put(key, rec)
	return rec, nil
}

func defaultThreads() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
