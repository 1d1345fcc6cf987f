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

package main

import (
	"fmt"

	"github.com/SnellerInc/encs/engine"
	"github.com/SnellerInc/encs/internal/hostinfo"
)

func runInfo() {
	info := hostinfo.Gather()
	cfg := engine.DefaultConfig()

	if dashjson {
		fields := map[string]any{
			"os":           info.OS,
			"arch":         info.Arch,
			"num_cpu":      info.NumCPU,
			"max_threads":  cfg.MaxThreads,
			"memory_limit": cfg.MemoryLimit,
		}
		if dashall {
			fields["username"] = info.Username
			fields["hostname"] = info.Hostname
			fields["cpu"] = info.CPU
			fields["has_aesni"] = info.HasAESNI
			fields["has_avx2"] = info.HasAVX2
		}
		printJSON(fields)
		return
	}

	fmt.Printf("os: %s/%s, cpus: %d, default max_threads: %d, default memory_limit: %d bytes\n",
		info.OS, info.Arch, info.NumCPU, cfg.MaxThreads, cfg.MemoryLimit)
	if dashall {
		fmt.Printf("user: %s, host: %s, cpu: %s, aes-ni: %v, avx2: %v\n",
			info.Username, info.Hostname, info.CPU, info.HasAESNI, info.HasAVX2)
	}
}
