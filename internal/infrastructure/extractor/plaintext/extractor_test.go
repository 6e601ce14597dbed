package plaintext

import "testing"

func TestExtractTextTrimsAndStripsBOM(t *testing.T) {
	got := ExtractText([]byte("\xEF\xBB\xBF  invoice total: 42\n"))
	if got != "invoice total: 42" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractTextRejectsBinary(t *testing.T) {
	if got := ExtractText([]byte{0xff, 0xfe, 0x00, 0x81}); got != "" {
		t.Fatalf("expected empty text for binary input, got %q", got)
	}
}
