// Package embedding provides text chunking and long-text vectorization
// on top of the embedding provider chain.
package embedding

import "strings"

// sentence terminators checked in priority order when looking for a
// chunk boundary.
var sentenceTerminators = []rune{'。', '！', '？', '.', '!', '?', '\n'}

// Chunk splits text into pieces of at most maxLen runes, preferring to cut
// after the last sentence terminator inside the window. Consecutive chunks
// overlap by up to overlap runes. Pure function.
func Chunk(text string, maxLen, overlap int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + maxLen
		if end < len(runes) {
			if cut := lastTerminator(runes, start, end); cut > start {
				end = cut + 1
			}
		} else {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			// Overlap would stall the scan; move past the chunk instead.
			next = end
		}
		start = next
	}

	return chunks
}

// lastTerminator returns the index of the cut position inside [start, end),
// checking terminators in priority order the way the splitter prefers
// CJK punctuation over ASCII. Returns -1 when none is found.
func lastTerminator(runes []rune, start, end int) int {
	for _, term := range sentenceTerminators {
		for i := end - 1; i > start; i-- {
			if runes[i] == term {
				return i
			}
		}
	}
	return -1
}
