package extract

import (
	"context"
	"errors"
	"testing"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(context.Context, []byte) (string, error) {
	return s.text, s.err
}

func TestExtractInlineText(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		filename    string
		want        string
	}{
		{
			name:        "plain text",
			data:        []byte("hello world"),
			contentType: "text/plain",
			filename:    "notes.txt",
			want:        "hello world",
		},
		{
			name:        "charset parameter ignored",
			data:        []byte("hello"),
			contentType: "text/plain; charset=utf-8",
			filename:    "notes.txt",
			want:        "hello",
		},
		{
			name:        "markdown",
			data:        []byte("# Title"),
			contentType: "text/markdown",
			filename:    "doc.md",
			want:        "# Title",
		},
		{
			name:     "type inferred from extension",
			data:     []byte("inferred"),
			filename: "plain.txt",
			want:     "inferred",
		},
		{
			name:        "octet-stream falls back to extension",
			data:        []byte("fallback"),
			contentType: "application/octet-stream",
			filename:    "doc.md",
			want:        "fallback",
		},
		{
			name:        "leading BOM stripped",
			data:        []byte{0xEF, 0xBB, 0xBF, 'h', 'i'},
			contentType: "text/plain",
			filename:    "bom.txt",
			want:        "hi",
		},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Extract(context.Background(), tt.data, tt.contentType, tt.filename)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(context.Background(), []byte{0xFF, 0xFE, 0x00}, "text/plain", "bad.txt")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractUnregisteredType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract(context.Background(), []byte("%PDF-1.7"), "application/pdf", "doc.pdf")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("pdf without extractor: err = %v, want ErrUnsupportedType", err)
	}

	_, err = r.Extract(context.Background(), []byte("data"), "", "mystery.bin")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("unknown type: err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractRegisteredExtractor(t *testing.T) {
	r := NewRegistry()
	r.Register("application/pdf", &stubExtractor{text: "page one"})

	got, err := r.Extract(context.Background(), []byte("%PDF-1.7"), "application/pdf", "doc.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "page one" {
		t.Errorf("Extract = %q", got)
	}

	docx := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	r.Register(docx, &stubExtractor{err: errors.New("corrupt archive")})
	_, err = r.Extract(context.Background(), []byte("PK"), "", "report.docx")
	if err == nil || errors.Is(err, ErrUnsupportedType) {
		t.Errorf("extractor failure should surface as-is, got %v", err)
	}
}
