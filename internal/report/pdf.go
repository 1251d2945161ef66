// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 5.5
)

// unicodeFallbacks maps runes outside cp1252 to ASCII stand-ins before the
// core-font translation, which would otherwise replace them with dots.
var unicodeFallbacks = strings.NewReplacer(
	"\u2264", "<=", "\u2265", ">=", "\u2260", "!=", "\u2192", "->", "\u2190", "<-",
	"\u2217", "*", "\u2212", "-", "\u00a0", " ", "\u2009", " ", "\u200b", "",
)

// WritePDF renders r as an A4 PDF with core fonts. Text is translated to
// cp1252; runes it cannot represent are substituted.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(unicodeFallbacks.Replace(s)) }

	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("research-assistant", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.MultiCell(0, 8, text(r.Title), "", "L", false)
	if r.Subtitle != "" {
		pdf.SetFont(fontFamily, "I", 11)
		pdf.MultiCell(0, 6, text(r.Subtitle), "", "L", false)
	}
	pdf.Ln(4)

	for _, blk := range r.Blocks {
		pdf.SetFont(fontFamily, "B", 13)
		pdf.MultiCell(0, 7, text(blk.Heading), "", "L", false)
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, lineHeight, text(strings.TrimSpace(blk.Body)), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	return nil
}
