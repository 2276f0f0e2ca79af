package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

const maxListLimit = 1000

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseLimit reads ?limit=N. Missing means no limit; values are capped.
func parseLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

// parseTypeParam reads ?type=. When optional is set an empty value is allowed.
func parseTypeParam(r *http.Request, optional bool) (core.TransactionType, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" && optional {
		return "", nil
	}
	return core.ParseTransactionType(v)
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrDescriptionLong),
		errors.Is(err, core.ErrCategoryMismatch),
		errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
