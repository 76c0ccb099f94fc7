// Package pdftext recovers plain text from the bulletin's auction notice PDFs.
//
// The labeled fields in a notice ("Tribunal:", "Valor Minimo (pesos):", ...)
// are matched line by line downstream, so positioning operators in the content
// stream are turned into newlines instead of spaces.
package pdftext

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"

	"sjsage522/remateworker/pkg/errors"
)

// Extract pulls the text of every page of the document and returns it
// normalized: ASCII only, single newlines, trimmed.
//
// An unreadable container is a document parse error. A page without
// extractable text contributes an empty string, never an error.
func Extract(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", errors.NewDocumentParse("pdf", "unreadable document container", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, pageText(ctx, pageNr))
	}

	return Normalize(strings.Join(pages, "\n")), nil
}

// pageText extracts the text of a single page via its content stream.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// textFromStream parses PDF content stream operators for text.
// Tj/TJ show text, ' shows text on the next line, Td/TD/Tm/T* reposition
// the cursor and therefore delimit lines.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")),
			bytes.HasSuffix(line, []byte("Tm")), bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// writeStrings decodes every string literal on the line into sb.
func writeStrings(sb *strings.Builder, line []byte) {
	for _, lit := range stringLiterals(line) {
		sb.WriteString(decodeString(lit))
	}
}

// stringLiterals scans the line for parenthesised PDF string literals.
// Escaped and balanced nested parentheses stay inside the literal, so labels
// like "Valor Minimo (pesos):" survive intact. Escape sequences are kept raw
// for decodeString.
func stringLiterals(line []byte) [][]byte {
	var literals [][]byte
	var cur []byte
	depth := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		if depth == 0 {
			if c == '(' {
				depth = 1
				cur = nil
			}
			continue
		}
		switch c {
		case '\\':
			if i+1 < len(line) {
				cur = append(cur, c, line[i+1])
				i++
			} else {
				cur = append(cur, c)
			}
		case '(':
			depth++
			cur = append(cur, c)
		case ')':
			depth--
			if depth == 0 {
				literals = append(literals, cur)
			} else {
				cur = append(cur, c)
			}
		default:
			cur = append(cur, c)
		}
	}
	return literals
}

// decodeString handles basic PDF escape sequences. Bytes outside ASCII are
// read as Latin-1, which covers the WinAnsi range Spanish notices use.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \364 for an accented vowel).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteRune(rune(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else if raw[i] < 0x80 {
			sb.WriteByte(raw[i])
		} else {
			sb.WriteRune(rune(raw[i]))
		}
	}
	return sb.String()
}

var multiNewlineRe = regexp.MustCompile(`\n{2,}`)

// Normalize folds text to ASCII and squeezes blank lines: NFKD decomposition,
// every rune outside ASCII dropped, \r turned into \n, runs of newlines
// collapsed to one, surrounding whitespace trimmed.
func Normalize(s string) string {
	folded := ASCIIFold(s)
	folded = strings.ReplaceAll(folded, "\r", "\n")
	folded = multiNewlineRe.ReplaceAllString(folded, "\n")
	return strings.TrimSpace(folded)
}

// ASCIIFold decomposes s with NFKD and drops every rune outside ASCII, so
// accented letters fold to their base letter.
func ASCIIFold(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
