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

// Package hostinfo gathers the host metadata (username, OS, CPU
// string) shown by the CLI's "info" command. It is an out-of-scope
// collaborator: nothing in the core depends on it.
package hostinfo

import (
	"os"
	"os/user"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Info is the host metadata the CLI's info command reports.
type Info struct {
	Username string
	OS       string
	Arch     string
	CPU      string
	NumCPU   int
	HasAESNI bool
	HasAVX2  bool
	Hostname string
}

// Gather collects the current host's metadata. Fields that can't be
// determined (e.g. username lookup failing in a stripped-down
// container) are left blank rather than causing Gather to fail.
func Gather() Info {
	info := Info{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPU:      cpuid.CPU.BrandName,
		NumCPU:   runtime.NumCPU(),
		HasAESNI: cpuid.CPU.Supports(cpuid.AESNI),
		HasAVX2:  cpuid.CPU.Supports(cpuid.AVX2),
	}
	if u, err := user.Current(); err == nil {
		info.Username = u.Username
	}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	return info
}
