package binarydoc

import "testing"

func TestPageStreamText(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
(Visit https://example.com/page for more) Tj
[(second ) (part https://example.com/two)] TJ
ET`)
	got := pageStreamText(stream)
	if want := "Visit https://example.com/page for more second  part https://example.com/two"; got != want {
		t.Errorf("pageStreamText = %q, want %q", got, want)
	}
}

func TestPageStreamTextIgnoresNonText(t *testing.T) {
	stream := []byte("q 1 0 0 1 72 720 cm\n(https://example.com/hidden) Do\nQ")
	if got := pageStreamText(stream); got != "" {
		t.Errorf("non-text operators yielded %q", got)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`paren \( pair \)`, "paren ( pair )"},
		{`back\\slash`, `back\slash`},
		{`oct\040space`, "oct space"},
		{`short\4tail`, "short\x04tail"},
	}
	for _, tt := range tests {
		if got := string(decodePDFString([]byte(tt.in))); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
