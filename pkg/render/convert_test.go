package render

import (
	"strings"
	"testing"
)

func TestConvertWithoutLibrsvg(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	_, err := ToPDF([]byte("<svg/>"))
	if err == nil {
		t.Fatal("ToPDF() = nil error without rsvg-convert")
	}
	if !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("ToPDF() error = %q, want install hint", err)
	}
}

func TestToPDF(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`
	pdf, err := ToPDF([]byte(svg))
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Error("ToPDF() output is not a PDF")
	}
}
