package utils

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitTextBySentence(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		maxChunkChars int
		want          []string
	}{
		{
			name:          "empty input",
			text:          "",
			maxChunkChars: 10,
			want:          []string{},
		},
		{
			name:          "whitespace only",
			text:          "   \n\t  ",
			maxChunkChars: 10,
			want:          []string{},
		},
		{
			name:          "short text stays whole",
			text:          "짧은 문장입니다.",
			maxChunkChars: 100,
			want:          []string{"짧은 문장입니다."},
		},
		{
			name:          "packs sentences greedily",
			text:          "A. B. C.",
			maxChunkChars: 5,
			want:          []string{"A. B.", "C."},
		},
		{
			name:          "splits at full-width punctuation",
			text:          "첫 번째 문장입니다。 두 번째 문장입니다。",
			maxChunkChars: 12,
			want:          []string{"첫 번째 문장입니다。", "두 번째 문장입니다。"},
		},
		{
			name:          "punctuation without space is not a boundary",
			text:          "버전 1.2는 안정적입니다. 그 다음 버전도 좋습니다.",
			maxChunkChars: 15,
			want:          []string{"버전 1.2는 안정적입니다.", "그 다음 버전도 좋습니다."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTextBySentence(tt.text, tt.maxChunkChars)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTextBySentence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitTextBySentenceOversizedSentence(t *testing.T) {
	// single sentence longer than the limit falls back to fixed-width slices
	long := strings.Repeat("가", 25)
	got := SplitTextBySentence(long+". 끝.", 10)

	for i, chunk := range got {
		if n := len([]rune(chunk)); n > 10 {
			t.Errorf("chunk %d has %d runes, want <= 10", i, n)
		}
	}
	if joined := strings.Join(got[:3], ""); joined != long+"." {
		t.Errorf("fixed-width slices do not reassemble the sentence: %q", joined)
	}
}

func TestSplitTextBySentenceRespectsLimit(t *testing.T) {
	text := strings.Repeat("이것은 조금 더 긴 테스트 문장입니다. ", 50)
	got := SplitTextBySentence(text, 100)

	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if n := len([]rune(chunk)); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitTextBySentenceDeterministic(t *testing.T) {
	text := strings.Repeat("결정적인 분할을 확인합니다. ", 30)
	first := SplitTextBySentence(text, 80)
	second := SplitTextBySentence(text, 80)
	if !reflect.DeepEqual(first, second) {
		t.Error("same input produced different chunkings")
	}
}

func TestSplitText(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitText(text, 10, 2)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk %d has %d chars, want <= 10", i, len(chunk))
		}
	}
	// overlap: each next chunk starts 8 runes after the previous
	if !strings.HasPrefix(chunks[1], chunks[0][8:]) {
		t.Errorf("chunk 1 %q does not overlap chunk 0 %q", chunks[1], chunks[0])
	}
}

func TestChunkDispatch(t *testing.T) {
	text := "첫 번째 문장입니다. 두 번째 문장입니다."

	// no overlap packs by sentence
	got := Chunk(text, 15, 0)
	want := SplitTextBySentence(text, 15)
	if len(got) != len(want) {
		t.Fatalf("Chunk without overlap = %d chunks, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}

	// a positive overlap switches to sliding windows
	long := strings.Repeat("가나다라마", 5)
	windows := Chunk(long, 10, 5)
	if len(windows) != 4 {
		t.Fatalf("expected 4 overlapping windows, got %d", len(windows))
	}
	first := []rune(windows[0])
	second := []rune(windows[1])
	if string(first[5:]) != string(second[:5]) {
		t.Errorf("window 1 must start with the tail of window 0: %q vs %q", windows[0], windows[1])
	}

	if got := Chunk("   ", 10, 5); len(got) != 0 {
		t.Errorf("blank input should produce no chunks, got %v", got)
	}
}
