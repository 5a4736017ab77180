// Package corruption classifies chunk text damaged by malformed document
// extraction and filters such chunks out of the ingestion pipeline.
package corruption

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the shortest content, in characters, considered usable.
const MinLength = 10

// Ratio thresholds.
const (
	// MaxNoiseRatio is the highest tolerated share of control and
	// undecodable characters.
	MaxNoiseRatio = 0.3

	// MaxBackslashRatio and MaxQuestionRatio together flag text that went
	// through a broken encoding round-trip.
	MaxBackslashRatio = 0.05
	MaxQuestionRatio  = 0.2
)

// Reason explains why content was classified as corrupted.
type Reason string

// Corruption reasons.
const (
	ReasonNone            Reason = ""
	ReasonTooShort        Reason = "too_short"
	ReasonArchiveMarker   Reason = "archive_marker"
	ReasonBinaryNoise     Reason = "binary_noise"
	ReasonGarbledEncoding Reason = "garbled_encoding"
)

// Verdict is the classification of one piece of content.
type Verdict struct {
	Corrupted bool
	Reason    Reason

	// Marker is the leakage marker found, for ReasonArchiveMarker.
	Marker string
}

// markers are path and markup fragments of office archives and XML parts
// that leak into text when a binary document is read as plain text.
var markers = []string{
	"_rels/",
	".rels",
	"[Content_Types].xml",
	"<Relationship",
	"word/document.xml",
	"docProps/",
	"xl/worksheets",
	"ppt/slides",
	"PK\x03\x04",
	"<?xml",
	"xmlns:w=",
	"META-INF/manifest.xml",
}

// Detect classifies content. It is pure and deterministic.
func Detect(content string) Verdict {
	trimmed := strings.TrimSpace(content)
	total := utf8.RuneCountInString(trimmed)
	if total < MinLength {
		return Verdict{Corrupted: true, Reason: ReasonTooShort}
	}

	for _, m := range markers {
		if strings.Contains(content, m) {
			return Verdict{Corrupted: true, Reason: ReasonArchiveMarker, Marker: m}
		}
	}

	var noise, backslashes, questions int
	for _, r := range trimmed {
		switch {
		case isNoiseRune(r):
			noise++
		case r == '\\':
			backslashes++
		case r == '?':
			questions++
		}
	}

	n := float64(total)
	if float64(noise)/n > MaxNoiseRatio {
		return Verdict{Corrupted: true, Reason: ReasonBinaryNoise}
	}
	if float64(backslashes)/n > MaxBackslashRatio && float64(questions)/n > MaxQuestionRatio {
		return Verdict{Corrupted: true, Reason: ReasonGarbledEncoding}
	}

	return Verdict{}
}

// IsCorrupted is shorthand for Detect(content).Corrupted.
func IsCorrupted(content string) bool {
	return Detect(content).Corrupted
}

// isNoiseRune reports control characters other than common whitespace,
// C1 controls, the replacement character (also produced for invalid UTF-8)
// and private-use code points.
func isNoiseRune(r rune) bool {
	switch {
	case r == '\n', r == '\r', r == '\t':
		return false
	case r < 0x20, r == 0x7f:
		return true
	case r >= 0x80 && r <= 0x9f:
		return true
	case r == utf8.RuneError:
		return true
	case r >= 0xe000 && r <= 0xf8ff:
		return true
	default:
		return false
	}
}
