package encoding

import (
	"reflect"
	"testing"
)

func TestStringListRoundTrip(t *testing.T) {
	encoded, err := EncodeStringList([]string{"formal", "dated"})
	if err != nil {
		t.Fatalf("EncodeStringList() error = %v", err)
	}
	if got := DecodeStringList(encoded); !reflect.DeepEqual(got, []string{"formal", "dated"}) {
		t.Errorf("round trip = %v", got)
	}
}

func TestEncodeStringListEmpty(t *testing.T) {
	for _, values := range [][]string{nil, {}} {
		got, err := EncodeStringList(values)
		if err != nil {
			t.Fatalf("EncodeStringList(%v) error = %v", values, err)
		}
		if got != "[]" {
			t.Errorf("EncodeStringList(%v) = %q, want []", values, got)
		}
	}
}

func TestDecodeStringListLenient(t *testing.T) {
	for _, raw := range []string{"", "null", "not json", "{...}"} {
		got := DecodeStringList(raw)
		if got == nil || len(got) != 0 {
			t.Errorf("DecodeStringList(%q) = %v, want empty slice", raw, got)
		}
	}
}

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text untouched", "a greeting", 120, "a greeting"},
		{"exact length untouched", "abcde", 5, "abcde"},
		{
			"cut at word boundary",
			"this is a very long text that should be truncated", 20,
			"this is a very long...",
		},
		{"no space before cut", "supercalifragilistic", 10, "supercalif..."},
		{"zero max disables truncation", "anything at all", 0, "anything at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncatePreview(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("TruncatePreview(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncatePreviewRuneBoundary(t *testing.T) {
	// 12 bytes of 3-byte runes; a cut at byte 8 lands mid-rune
	text := "ばらの花が咲く"
	got := TruncatePreview(text, 8)
	if got != "ばら..." {
		t.Errorf("TruncatePreview = %q, want %q", got, "ばら...")
	}
}
