package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

// ToPDF converts a rendered SVG to PDF with rsvg-convert.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts a rendered SVG to PNG at the given scale factor; 2.0
// doubles the raster resolution, which keeps labels readable on big graphs.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// rsvgConvert pipes the SVG through rsvg-convert. librsvg is a runtime
// requirement only for PDF and PNG output; DOT and SVG need nothing external.
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	bin, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, fmt.Errorf("%s output requires rsvg-convert (librsvg): %w", format, err)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert -f %s: %v: %s", format, err, errBuf.String())
	}
	return out.Bytes(), nil
}
