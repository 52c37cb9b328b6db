// Package efd parses EFD-Contribuições (SPED PIS/COFINS) bookkeeping files
// and extracts the records that carry contribution credits.
package efd

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"credsped/internal/domain"
)

// TextExtension is the member extension recognized inside zip artifacts.
const TextExtension = ".txt"

// LoadArtifact turns an uploaded artifact into an ordered flat sequence of
// text lines. A .txt artifact contributes its own lines; a .zip artifact
// contributes the lines of every .txt member in archive-listing order.
// Anything else fails with domain.ErrUnsupportedArtifact.
func LoadArtifact(name string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case TextExtension:
		return splitLines(decodeBytes(data)), nil
	case ".zip":
		return loadZip(data)
	default:
		return nil, domain.ErrUnsupportedArtifact
	}
}

func loadZip(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.ErrUnsupportedArtifact
	}

	var lines []string
	found := false
	for _, member := range zr.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), TextExtension) {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		found = true
		lines = append(lines, splitLines(decodeBytes(raw))...)
	}
	if !found {
		return nil, domain.ErrEmptyArchive
	}
	return lines, nil
}

// decodeBytes decodes file content, preferring UTF-8 and falling back to
// ISO-8859-1, the single-byte encoding SPED emitters commonly use. It never
// fails: ISO-8859-1 maps every byte.
func decodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// Unreachable for ISO-8859-1, but keep the replacement contract.
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(decoded)
}

func splitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, "\r"))
	}
	// Drop trailing blank lines left by the final newline.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitRecord splits one logical record into its pipe-delimited fields.
// Field 0 is always the empty slot before the leading delimiter and field 1
// the record tag; records with fewer than three fields are noise.
func splitRecord(line string) []string {
	return strings.Split(strings.TrimSpace(line), "|")
}
