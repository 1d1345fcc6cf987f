// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
)

// hostMemTotal is the total usable DRAM on this host, read once at
// package init from /proc/meminfo on Linux. It is zero on other
// platforms or if the read fails; callers must treat zero as
// "unknown" rather than "no memory available."
var hostMemTotal int64

func init() {
	hostMemTotal = readHostMemTotal()
}

// readHostMemTotal parses MemTotal out of /proc/meminfo. Unlike the
// original DRAM probe this never panics: a container or sandboxed
// host without /proc/meminfo should still be able to pick a default
// memory ceiling, just a conservative one (see DefaultMemoryLimit).
func readHostMemTotal() int64 {
	if runtime.GOOS != "linux" {
		return 0
	}
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var kb int64
		if n, _ := fmt.Sscanf(sc.Text(), "MemTotal: %d kB", &kb); n == 1 {
			return kb * 1024
		}
	}
	return 0
}

// fallbackMemoryLimit is used when the host's total memory cannot be
// determined; it is deliberately conservative.
const fallbackMemoryLimit = 512 * 1024 * 1024

// DefaultMemoryLimit returns a reasonable default memory ceiling for
// the pipeline: one quarter of detected host DRAM, or a fixed
// fallback if DRAM could not be detected.
func DefaultMemoryLimit() int64 {
	if hostMemTotal == 0 {
		return fallbackMemoryLimit
	}
	return hostMemTotal / 4
}
