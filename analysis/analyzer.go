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

// Package analysis classifies a byte sample drawn from a file and
// estimates how compressible it is. It never touches the filesystem;
// Record is computed purely from the bytes it is given.
package analysis

import (
	"math"
	"strings"

	"github.com/SnellerInc/encs/numeric"
)

// SampleSize is the maximum number of leading bytes of a file that
// Analyze needs to see. Callers with smaller files should pass the
// whole file.
const SampleSize = 64 * 1024

// textHeuristicWindow bounds the text-ratio / text-heuristic scan to
// the first 4 KiB of the sample, per the analyzer's design.
const textHeuristicWindow = 4 * 1024

// Class is the file-type classification assigned to a sample.
type Class int

const (
	Unknown Class = iota
	Text
	Binary
	Image
	Archive
)

func (c Class) String() string {
	switch c {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Image:
		return "image"
	case Archive:
		return "archive"
	default:
		return "unknown"
	}
}

// Record is the result of analyzing a sample.
type Record struct {
	Entropy         float64 // Shannon entropy, normalized to [0,1]
	Class           Class
	Confidence      float64 // [0,1]
	Compressibility float64 // [0,1], higher = more compressible
	Executable      bool
	TextRatio       float64 // [0,1]
}

// compressibilityFactor scales (1 - entropy) into a compressibility
// score, per file-type class.
var compressibilityFactor = map[Class]float64{
	Text:    1.3,
	Binary:  0.8,
	Image:   0.2,
	Archive: 0.05,
	Unknown: 1.0,
}

// Analyze classifies sample and computes its analysis record. sample
// should be at most SampleSize bytes (the leading bytes of the file,
// or the whole file if smaller); Analyze does not enforce this, it
// simply operates on whatever is handed to it.
func Analyze(sample []byte) Record {
	entropy := shannonEntropy(sample)
	textRatio := textRatioOf(sample[:numeric.Min(len(sample), textHeuristicWindow)])

	class, confidence := classify(sample, textRatio)
	factor := compressibilityFactor[class]
	compressibility := numeric.Clamp((1-entropy)*factor, 0, 1)

	return Record{
		Entropy:         entropy,
		Class:           class,
		Confidence:      confidence,
		Compressibility: compressibility,
		Executable:      isExecutable(sample),
		TextRatio:       textRatio,
	}
}

// shannonEntropy computes the Shannon entropy of data in bits per
// byte, normalized into [0,1] by dividing by 8.
func shannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	total := float64(len(data))
	entropy := 0.0
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy / 8
}

// textRatioOf returns the fraction of bytes that are printable ASCII
// or ASCII whitespace.
func textRatioOf(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	printable := 0
	for _, b := range data {
		if isPrintableOrWhitespace(b) {
			printable++
		}
	}
	return float64(printable) / float64(len(data))
}

func isPrintableOrWhitespace(b byte) bool {
	if b >= 0x20 && b < 0x7F {
		return true
	}
	switch b {
	case '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// classify assigns a Class to sample, first consulting the magic-number
// table (§4.3), then falling back to the text heuristic.
func classify(sample []byte, textRatio float64) (Class, float64) {
	if mime, ok := detectMagic(sample); ok {
		switch {
		case strings.HasPrefix(mime, "text/"):
			return Text, 0.8
		case strings.HasPrefix(mime, "image/"):
			return Image, 0.8
		case strings.Contains(mime, "zip") || strings.Contains(mime, "tar") || strings.Contains(mime, "gz"):
			return Archive, 0.8
		default:
			return Binary, 0.8
		}
	}
	if textRatio > 0.70 {
		return Text, 0.5
	}
	return Unknown, 0.3
}

func isExecutable(sample []byte) bool {
	for _, sig := range executableSignatures {
		if hasPrefixBytes(sample, sig) {
			return true
		}
	}
	return false
}

var executableSignatures = [][]byte{
	{'M', 'Z'},               // DOS/PE
	{0x7F, 'E', 'L', 'F'},    // ELF
	{0xFE, 0xED, 0xFA, 0xCE}, // Mach-O (32-bit)
	{'#', '!'},               // shebang script
}

func hasPrefixBytes(data, prefix []byte) bool {
	return len(data) >= len(prefix) && string(data[:len(prefix)]) == string(prefix)
}
