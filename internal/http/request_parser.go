package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// maxBodyBytes bounds request bodies; a transaction is a few hundred bytes.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the request body once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when the content type says so or the
// body looks like an object, otherwise as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(p.contentType)
	trimmed := strings.TrimSpace(string(p.body))
	if mediaType == "application/json" || strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
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

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string. Numbers keep their
// shortest exact form so 12.5 stays "12.5".
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft builds a transaction draft from a parsed body. Field errors
// wrap the core sentinels so callers can map them to 422.
func ParseDraft(p *RequestBodyParser) (core.TransactionDraft, error) {
	if err := p.Parse(); err != nil {
		return core.TransactionDraft{}, err
	}

	t, err := core.ParseTransactionType(p.Get("type"))
	if err != nil {
		return core.TransactionDraft{}, err
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.TransactionDraft{}, fmt.Errorf("%w: %q", err, p.Get("amount"))
	}

	d := core.TransactionDraft{
		Type:        t,
		Amount:      amount,
		Category:    p.Get("category"),
		CategoryID:  p.Get("categoryId"),
		Description: p.Get("description"),
	}
	if d.Category == "" && d.CategoryID == "" {
		return core.TransactionDraft{}, core.ErrEmptyCategory
	}
	return d, nil
}

// isBodyTooLarge reports whether err came from the body size limit.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
