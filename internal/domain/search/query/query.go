package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	// MaxStructuredFilters is the maximum number of backend-side filters.
	MaxStructuredFilters = 16
)

// Query identifies one search lineage: the free-text input plus the
// structured filters sent to the backend. Any change to either starts a
// new lineage. Empty text with no filters is the browse-all lineage.
type Query struct {
	text       string
	structured map[string]string
}

// New validates and creates a Query. Text may be empty (browse-all).
// Structured filter keys must be non-empty; entries with empty values
// are dropped rather than sent upstream.
func New(text string, structured map[string]string) (Query, error) {
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query text too long (max %d chars)", MaxTextLength)
	}
	if len(structured) > MaxStructuredFilters {
		return Query{}, fmt.Errorf("too many structured filters (max %d)", MaxStructuredFilters)
	}

	var kept map[string]string
	for k, v := range structured {
		if k == "" {
			return Query{}, fmt.Errorf("structured filter key is required")
		}
		if v == "" {
			continue
		}
		if kept == nil {
			kept = make(map[string]string, len(structured))
		}
		kept[k] = v
	}

	return Query{text: strings.TrimSpace(text), structured: kept}, nil
}

// Reconstruct creates a Query without validation (tests, hydration).
func Reconstruct(text string, structured map[string]string) Query {
	return Query{text: text, structured: structured}
}

// Text returns the free-text query input.
func (q *Query) Text() string { return q.text }

// Structured returns a copy of the backend-side filters.
func (q *Query) Structured() map[string]string {
	if q.structured == nil {
		return nil
	}
	c := make(map[string]string, len(q.structured))
	for k, v := range q.structured {
		c[k] = v
	}
	return c
}

// IsBrowseAll reports whether this is the unfiltered landing lineage.
func (q *Query) IsBrowseAll() bool { return q.text == "" && len(q.structured) == 0 }

// Fingerprint returns a canonical digest of the query. Two queries with
// equal text and equal structured filters produce the same fingerprint
// regardless of map iteration order.
func (q *Query) Fingerprint() string {
	keys := make([]string, 0, len(q.structured))
	for k := range q.structured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(q.text))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(q.structured[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports whether two queries identify the same lineage.
func (q *Query) Equal(other Query) bool {
	if q.text != other.text || len(q.structured) != len(other.structured) {
		return false
	}
	for k, v := range q.structured {
		if other.structured[k] != v {
			return false
		}
	}
	return true
}
