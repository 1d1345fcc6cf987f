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

package analysis

// magicEntry is one row of the magic-number table: a byte signature
// and the MIME type it identifies.
type magicEntry struct {
	sig  []byte
	mime string
}

// magicTable lists standard industry file signatures found at the
// start of a file. No signature is a prefix of another, so the order
// of the rows does not affect which one matches.
var magicTable = []magicEntry{
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("\xFF\xD8\xFF"), "image/jpeg"},
	{[]byte("BM"), "image/bmp"},
	{[]byte("RIFF"), "image/webp"}, // also WAV/AVI; close enough for a sample-only sniff
	{[]byte("PK\x03\x04"), "application/zip"},
	{[]byte("PK\x05\x06"), "application/zip"},
	{[]byte("PK\x07\x08"), "application/zip"},
	{[]byte("\x1F\x8B"), "application/gzip"},
	{[]byte("BZh"), "application/x-bzip2"},
	{[]byte("\xFD7zXZ\x00"), "application/x-xz"},
	{[]byte("7z\xBC\xAF\x27\x1C"), "application/x-7z-compressed"},
	{[]byte("ustar\x0000"), "application/x-tar"},
	{[]byte("Rar!\x1A\x07"), "application/x-rar-compressed"},
	{[]byte("%PDF-"), "application/pdf"},
	{[]byte("\x7FELF"), "application/x-elf"},
	{[]byte("MZ"), "application/x-dosexec"},
	{[]byte("\xCA\xFE\xBA\xBE"), "application/java-vm"},
	{[]byte("{\n"), "application/json"},
	{[]byte("{\""), "application/json"},
	{[]byte("<?xml"), "text/xml"},
	{[]byte("<html"), "text/html"},
	{[]byte("<!DOCTYPE html"), "text/html"},
}

// tarMagicOffset is where a POSIX tar header stores its "ustar" magic.
const tarMagicOffset = 257

// detectMagic checks sample for the tar magic at tarMagicOffset, then
// consults magicTable against the leading bytes of sample, and returns
// the matching MIME string, if any.
func detectMagic(sample []byte) (string, bool) {
	if len(sample) > tarMagicOffset && hasPrefixBytes(sample[tarMagicOffset:], []byte("ustar")) {
		return "application/x-tar", true
	}
	for _, e := range magicTable {
		if hasPrefixBytes(sample, e.sig) {
			return e.mime, true
		}
	}
	return "", false
}
