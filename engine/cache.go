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
	"encoding/binary"
	"sync"
	"time"

	"github.com/dchest/siphash"

	"github.com/SnellerInc/encs/analysis"
)

// siphash keys for the analysis cache: two fixed constants, so a given
// (path, size, mtime) always hashes to the same cache key.
const (
	cacheKey0 = uint64(0x5d1ec810)
	cacheKey1 = uint64(0xfebed702)
)

// analysisCache is an in-memory, engine-lifetime cache of content
// analysis records keyed by (path, size, mtime). It is an
// optimization only: correctness must never depend on a cache hit.
type analysisCache struct {
	mu sync.RWMutex
	m  map[uint64]analysis.Record
}

func newAnalysisCache() *analysisCache {
	return &analysisCache{m: make(map[uint64]analysis.Record)}
}

// cacheKeyFor hashes (path, size, mtime) into the 64-bit key used to
// index the cache.
func cacheKeyFor(path string, size int64, mtime time.Time) uint64 {
	var buf []byte
	buf = append(buf, path...)
	var word [8]byte
	binary.LittleEndian.PutUint64(word[:], uint64(size))
	buf = append(buf, word[:]...)
	binary.LittleEndian.PutUint64(word[:], uint64(mtime.UnixNano()))
	buf = append(buf, word[:]...)
	return siphash.Hash(cacheKey0, cacheKey1, buf)
}

func (c *analysisCache) get(key uint64) (analysis.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.m[key]
	return rec, ok
}

func (c *analysisCache) put(key uint64, rec analysis.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = rec
}
