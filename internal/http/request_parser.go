// Package http serves the tracker's JSON API.
//
// This file implements utilities for parsing and validating request data.
// Bodies may be JSON, form-encoded or multipart; handlers read fields the
// same way regardless.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"garagetracker/internal/core"
	"garagetracker/internal/services"
)

const (
	maxBodySize   = 1 << 20
	maxUploadSize = 32 << 20
	sniffLen      = 512
)

// allowedImageTypes is the set of sniffed MIME types accepted as photos.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	req       *http.Request
	body      []byte
	jsonData  map[string]any
	formData  url.Values
	multipart *multipart.Form
	opened    []multipart.File
	parsed    bool
	err       error
}

// NewRequestBodyParser creates a parser for the given request. Nothing is
// read until Parse.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	return &RequestBodyParser{req: r}
}

// Parse reads the body as multipart, JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	p.err = p.parse()
	return p.err
}

func (p *RequestBodyParser) parse() error {
	mediaType, _, _ := mime.ParseMediaType(p.req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := p.req.ParseMultipartForm(maxUploadSize); err != nil {
			return &badRequest{msg: "invalid multipart body"}
		}
		p.multipart = p.req.MultipartForm
		p.formData = url.Values(p.req.MultipartForm.Value)
		return nil
	}

	if p.req.Body == nil {
		p.formData = url.Values{}
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(p.req.Body, maxBodySize+1))
	if err != nil {
		return &badRequest{msg: "failed to read body"}
	}
	if len(body) > maxBodySize {
		return &badRequest{msg: "body too large"}
	}
	p.body = body

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(body, &p.jsonData); err != nil {
			return &badRequest{msg: "invalid JSON body"}
		}
		return nil
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return &badRequest{msg: "invalid form body"}
	}
	p.formData = values
	return nil
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Date parses key as YYYY-MM-DD. An empty field yields def.
func (p *RequestBodyParser) Date(key string, def core.Date) (core.Date, error) {
	return parseDateValue(key, p.Get(key), def)
}

// Amount parses key as a decimal amount; an empty field is zero.
func (p *RequestBodyParser) Amount(key string) (core.Money, error) {
	return parseAmountValue(key, p.Get(key))
}

// PositiveAmount parses key as a decimal amount greater than zero. An empty
// field is zero and left to the record's own validation.
func (p *RequestBodyParser) PositiveAmount(key string) (core.Money, error) {
	raw := p.Get(key)
	if raw == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return core.Money{}, core.Invalid(key, "must be a positive decimal amount")
	}
	return core.Money{Cents: cents}, nil
}

// OptionalBool parses key; nil means the field was not sent.
func (p *RequestBodyParser) OptionalBool(key string) (*bool, error) {
	v := p.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, core.Invalid(key, "must be true or false")
	}
	return &b, nil
}

// Images opens the image files uploaded under field. Files that are not a
// supported image are left out and counted in rejected. The returned
// attachments stay readable until Close.
func (p *RequestBodyParser) Images(field string) (files []services.Attachment, rejected int) {
	if p.multipart == nil {
		return nil, 0
	}
	for _, fh := range p.multipart.File[field] {
		f, err := fh.Open()
		if err != nil {
			rejected++
			continue
		}
		p.opened = append(p.opened, f)

		mimeType, ok := sniffImage(f)
		if !ok {
			rejected++
			continue
		}
		files = append(files, services.Attachment{
			Filename:    fh.Filename,
			ContentType: mimeType,
			Body:        f,
		})
	}
	return files, rejected
}

// Close releases opened uploads and any temporary files.
func (p *RequestBodyParser) Close() error {
	var errs []error
	for _, f := range p.opened {
		errs = append(errs, f.Close())
	}
	p.opened = nil
	if p.multipart != nil {
		errs = append(errs, p.multipart.RemoveAll())
	}
	return errors.Join(errs...)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// sniffImage detects the MIME type of f from its first bytes and rewinds it.
func sniffImage(f multipart.File) (string, bool) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false
	}
	head = head[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", false
	}

	mimeType := http.DetectContentType(head)
	return mimeType, allowedImageTypes[mimeType]
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func parseDateValue(key, raw string, def core.Date) (core.Date, error) {
	if raw == "" {
		return def, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, core.Invalid(key, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func parseAmountValue(key, raw string) (core.Money, error) {
	cents, err := core.ParseOptionalCents(raw)
	if err != nil {
		return core.Money{}, core.Invalid(key, "must be a non-negative decimal amount")
	}
	return core.Money{Cents: cents}, nil
}

// queryDate reads a YYYY-MM-DD query parameter, defaulting to today.
func queryDate(r *http.Request, key string) (core.Date, error) {
	return parseDateValue(key, strings.TrimSpace(r.URL.Query().Get(key)), today())
}
