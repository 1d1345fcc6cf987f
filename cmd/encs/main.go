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
	"bufio"
	"flag"
	"fmt"
	"os"
)

var (
	dashv         bool
	dashjson      bool
	dashforce     bool
	dashverify    bool
	dashstreaming bool
	dashdetailed  bool
	dashall       bool
	dashAlgorithm string
	dashOptimize  string
	dashLevel     int
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashjson, "json", false, "emit machine-readable JSON output")
	flag.BoolVar(&dashforce, "force", false, "overwrite an existing output file without prompting")
	flag.BoolVar(&dashverify, "verify", false, "after compress, decompress to a temp file and compare hashes")
	flag.BoolVar(&dashstreaming, "streaming", false, "accepted for compatibility; behaves identically to the standard path")
	flag.BoolVar(&dashdetailed, "detailed", false, "show full analysis detail")
	flag.BoolVar(&dashall, "all", false, "show all host info fields")
	flag.StringVar(&dashAlgorithm, "algorithm", "", "force a codec (store|zstd|lz4|lz4-hc|snappy|brotli|deflate)")
	flag.StringVar(&dashOptimize, "optimization", "balanced", "optimization target: speed|ratio|balanced|memory")
	flag.IntVar(&dashLevel, "level", 0, "codec level/quality, meaning depends on -algorithm")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if !dashv {
		return
	}
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

// confirmOverwrite asks the user on stdin before clobbering an
// existing file, unless -force was given.
func confirmOverwrite(path string) bool {
	if dashforce {
		return true
	}
	if _, err := os.Stat(path); err != nil {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s already exists; overwrite? [y/N] ", path)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	switch sc.Text() {
	case "y", "Y", "yes":
		return true
	default:
		return false
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "compress":
		if len(args) != 3 {
			exitf("usage: [flags] compress <in> <out>\n")
		}
		runCompress(args[1], args[2])
	case "decompress":
		if len(args) != 3 {
			exitf("usage: [flags] decompress <in> <out>\n")
		}
		runDecompress(args[1], args[2])
	case "analyze":
		if len(args) != 2 {
			exitf("usage: [-detailed] analyze <file>\n")
		}
		runAnalyze(args[1])
	case "benchmark":
		if len(args) != 2 {
			exitf("usage: benchmark <file>\n")
		}
		runBenchmark(args[1])
	case "info":
		runInfo()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage (flags go before the subcommand):\n")
	fmt.Fprintf(os.Stderr, "    %s [-algorithm ...] [-optimization speed|ratio|balanced|memory] [-level N] [-verify] [-streaming] [-force] compress <in> <out>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s [-force] decompress <in> <out>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s [-detailed] analyze <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s benchmark <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s [-all] info\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.Usage()
}
