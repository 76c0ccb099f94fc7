// Package bienes scrapes the current public-land tenders ("licitaciones")
// from the Bienes Nacionales listing page. One GET, one card per tender.
package bienes

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sjsage522/remateworker/helpers"
	"sjsage522/remateworker/pkg/errors"
)

// DefaultListURL is the public licitaciones listing.
const DefaultListURL = "https://licitaciones.bienes.cl/licitaciones/licitaciones-actuales/"

// Licitacion is one tender card, flattened into the dataset item shape.
// Tenders carry no auction date or minimum price; those fields stay null.
type Licitacion struct {
	ID           string  `json:"id"`
	TipoRemate   string  `json:"tipo_remate"`
	TipoInmueble string  `json:"tipo_inmueble"`
	Region       string  `json:"region"`
	Comuna       string  `json:"comuna"`
	FechaRemate  *string `json:"fecha_remate"`
	PrecioMinimo *int64  `json:"precio_minimo"`
	Moneda       string  `json:"moneda"`
	Source       string  `json:"source"`
	SourceURL    string  `json:"source_url"`
	Superficie   string  `json:"superficie"`
}

// Scrape fetches the listing page and reads one item per tender card.
func Scrape(listURL string) ([]Licitacion, error) {
	if listURL == "" {
		listURL = DefaultListURL
	}
	base, err := baseOf(listURL)
	if err != nil {
		return nil, errors.NewConfiguration("invalid bienes listing URL: "+listURL, err)
	}

	body, err := helpers.FetchWithRandomHeaders(listURL)
	if err != nil {
		return nil, errors.NewHTTP("bienes", 0, "listing page request failed", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewDocumentParse("bienes", "cannot parse listing page", err)
	}

	var items []Licitacion
	doc.Find("div.card").Each(func(i int, card *goquery.Selection) {
		items = append(items, readCard(card, i+1, base, listURL))
	})
	return items, nil
}

// readCard extracts one tender from its card markup.
func readCard(card *goquery.Selection, n int, base, listURL string) Licitacion {
	title := strings.TrimSpace(card.Find("h3").First().Text())
	if title == "" {
		title = strings.TrimSpace(card.Find("h2").First().Text())
	}
	if title == "" {
		title = "Licitación Bienes Nacionales"
	}

	body := card.Find("div.card-body").First()
	if body.Length() == 0 {
		body = card
	}
	lines := textLines(body)

	estado := "Vigente"
	card.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), "suspendida") {
			estado = "Suspendida"
			return false
		}
		return true
	})

	sourceURL := listURL
	card.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), "Ver licitación") {
			return true
		}
		if href, ok := a.Attr("href"); ok && href != "" {
			if strings.HasPrefix(href, "/") {
				sourceURL = base + href
			} else {
				sourceURL = href
			}
		}
		return false
	})

	return Licitacion{
		ID:           fmt.Sprintf("bienes-%d", n),
		TipoRemate:   fmt.Sprintf("Bienes Nacionales (%s)", estado),
		TipoInmueble: title,
		Region:       labeledLine(lines, "Región:"),
		Comuna:       labeledLine(lines, "Provincia y comuna:"),
		Moneda:       "",
		Source:       "bienes_nacionales",
		SourceURL:    sourceURL,
		Superficie:   labeledLine(lines, "Superficie:"),
	}
}

// textLines flattens a selection into trimmed text lines, one per text node.
// A label and its value only read together when the markup keeps them in the
// same text node, which is how the listing renders its cards.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return lines
}

// labeledLine returns the value of the first line starting with prefix.
func labeledLine(lines []string, prefix string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

// baseOf reduces a listing URL to its scheme and host.
func baseOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
