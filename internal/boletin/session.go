package boletin

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strconv"

	"sjsage522/remateworker/pkg/errors"
)

// Session is an authenticated bulletin session. Tokens are captured once at
// bootstrap and live for the whole run; there is no refresh.
type Session struct {
	client      *Client
	token       string
	tokenHeader string
}

// Headers returns the headers every listing and download request carries:
// the echoed CSRF token under the server-announced header name, the AJAX
// marker, and a same-origin Referer and Origin.
func (s *Session) Headers() map[string]string {
	return map[string]string{
		s.tokenHeader:      s.token,
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          s.client.baseURL + landingPath,
		"Origin":           s.client.baseURL,
	}
}

// listingColumns are the four columns the remates DataTable declares, in
// server order.
var listingColumns = []string{
	"deudorNombre",
	"fchPublicacion",
	"entePublicador",
	"codigoValidacion",
}

// formPayload renders the fixed-shape DataTables request body. Searching and
// ordering are disabled on every column; the server ignores anything else.
func formPayload(start, length, draw int) map[string]string {
	payload := map[string]string{
		"draw":          strconv.Itoa(draw),
		"start":         strconv.Itoa(start),
		"length":        strconv.Itoa(length),
		"search[value]": "",
		"search[regex]": "false",
	}
	for i, column := range listingColumns {
		prefix := fmt.Sprintf("columns[%d]", i)
		payload[prefix+"[data]"] = column
		payload[prefix+"[searchable]"] = "false"
		payload[prefix+"[orderable]"] = "false"
		payload[prefix+"[search][value]"] = ""
		payload[prefix+"[search][regex]"] = "false"
	}
	return payload
}

// Pages walks the listing window by window, lazily. The sequence ends at the
// first page whose data comes back empty, without issuing any request past
// it; after each yielded page the window advances by req.Length and the draw
// counter by one, regardless of what the consumer did with the page. Each
// range over the sequence restarts from req; it is not resumable mid-stream.
func (s *Session) Pages(ctx context.Context, req PageRequest) iter.Seq2[*ListingPage, error] {
	return func(yield func(*ListingPage, error) bool) {
		start := req.Start
		length := req.Length
		if length <= 0 {
			length = 100
		}
		draw := req.Draw
		if draw <= 0 {
			draw = 1
		}

		for {
			page, err := s.fetchPage(ctx, req.Endpoint, start, length, draw)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page.Data) == 0 {
				return
			}
			if !yield(page, nil) {
				return
			}
			start += length
			draw++
		}
	}
}

// fetchPage posts one DataTables request and decodes the response.
func (s *Session) fetchPage(ctx context.Context, endpoint string, start, length, draw int) (*ListingPage, error) {
	res, err := s.client.http.R().
		SetContext(ctx).
		SetHeaders(s.Headers()).
		SetHeader("Accept", "application/json").
		SetFormData(formPayload(start, length, draw)).
		Post(endpoint)
	if err != nil {
		return nil, errors.NewHTTP(endpoint, 0, "listing request failed", err)
	}
	if !res.IsSuccess() {
		return nil, errors.NewHTTP(endpoint, res.StatusCode(), "listing returned error", nil)
	}

	var page ListingPage
	if err := json.Unmarshal(res.Body(), &page); err != nil {
		return nil, errors.NewDocumentParse(endpoint, "cannot decode listing response", err)
	}
	return &page, nil
}

// DownloadDocument fetches the notice document for a validation code and
// returns its raw bytes.
func (s *Session) DownloadDocument(ctx context.Context, codigoValidacion string) ([]byte, error) {
	res, err := s.client.http.R().
		SetContext(ctx).
		SetHeaders(s.Headers()).
		SetHeader("Accept", "application/pdf,application/octet-stream").
		SetFormData(map[string]string{"codigoValidacion": codigoValidacion}).
		Post(downloadPath)
	if err != nil {
		return nil, errors.NewHTTP(downloadPath, 0, "document request failed", err)
	}
	if !res.IsSuccess() {
		return nil, errors.NewHTTP(downloadPath, res.StatusCode(), "document returned error", nil)
	}
	return res.Body(), nil
}
