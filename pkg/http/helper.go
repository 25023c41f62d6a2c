package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.Validation("invalid limit parameter: "+s, nil)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.Validation("invalid offset parameter: "+s, nil)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// DecodeJSON reads a JSON request body into dst. An empty body or malformed
// JSON is reported as a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required", nil)
		}
		return apperrors.Validation("Invalid request body", map[string]any{"error": err.Error()})
	}
	return nil
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
