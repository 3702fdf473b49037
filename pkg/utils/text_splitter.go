package utils

import (
	"strings"
	"unicode"
)

// DefaultMaxChunkChars keeps chunks comfortably under typical embedding
// input limits.
const DefaultMaxChunkChars = 6000

// SplitText splits a long string into chunks of approximately 'chunkSize' characters.
// It includes an 'overlap' to preserve context at boundaries.
// This is a simple character-based splitter. Ideally, use a tokenizer-aware splitter.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// Chunk picks the splitting strategy for ingestion: a positive overlap uses
// the overlapping rune-window splitter, otherwise sentence packing.
func Chunk(text string, maxChunkChars, overlap int) []string {
	if overlap <= 0 {
		return SplitTextBySentence(text, maxChunkChars)
	}
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}
	return SplitText(trimmed, maxChunkChars, overlap)
}

// SplitTextBySentence splits text on sentence boundaries and greedily packs
// sentences into chunks of at most maxChunkChars characters. A boundary is
// whitespace preceded by sentence-ending punctuation (ASCII .!? or the
// full-width 。！？); the punctuation stays with its sentence. A single
// sentence longer than the limit falls back to fixed-width rune slices.
// The result is deterministic: same input, same chunks.
func SplitTextBySentence(text string, maxChunkChars int) []string {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}
	if len([]rune(trimmed)) <= maxChunkChars {
		return []string{trimmed}
	}

	sentences := splitSentences(trimmed)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if len([]rune(sentence)) > maxChunkChars {
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = append(chunks, sliceFixedWidth(sentence, maxChunkChars)...)
			continue
		}

		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if len([]rune(candidate)) > maxChunkChars {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		current = candidate
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	out := chunks[:0]
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// splitSentences cuts the text at whitespace that follows sentence-ending
// punctuation, consuming the whitespace itself.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0
	i := 0
	for i < len(runes) {
		if isSentenceEnd(runes[i]) {
			// consume the punctuation run, then any whitespace
			j := i + 1
			if j < len(runes) && unicode.IsSpace(runes[j]) {
				sentence := strings.TrimSpace(string(runes[start:j]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				for j < len(runes) && unicode.IsSpace(runes[j]) {
					j++
				}
				start = j
				i = j
				continue
			}
		}
		i++
	}
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func sliceFixedWidth(text string, width int) []string {
	runes := []rune(text)
	var parts []string
	for i := 0; i < len(runes); i += width {
		end := i + width
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}
