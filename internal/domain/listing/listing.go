package listing

import (
	"fmt"
)

// MaxIDLength is the maximum listing identifier length in bytes.
const MaxIDLength = 256

// Listing is a property listing returned by the search backend
// (immutable value object). The browse pipeline treats it as opaque
// except for the identifier, which deduplicates cache merges, and the
// fields client-side refinement compares against.
type Listing struct {
	id          string
	title       string
	location    string
	agent       string
	bedrooms    int
	price       int64
	url         string
	description string
}

// New validates and creates a Listing.
// ID: non-empty, max 256 bytes. Title: non-empty.
// Bedrooms: 0 means the backend did not report a count.
func New(id, title, location, agent string, bedrooms int, price int64, url, description string) (Listing, error) {
	if id == "" {
		return Listing{}, fmt.Errorf("listing ID is required")
	}
	if len(id) > MaxIDLength {
		return Listing{}, fmt.Errorf("listing ID too long (max %d)", MaxIDLength)
	}
	if title == "" {
		return Listing{}, fmt.Errorf("title is required")
	}
	if bedrooms < 0 {
		return Listing{}, fmt.Errorf("bedrooms must be non-negative")
	}
	if price < 0 {
		return Listing{}, fmt.Errorf("price must be non-negative")
	}

	return Listing{
		id:          id,
		title:       title,
		location:    location,
		agent:       agent,
		bedrooms:    bedrooms,
		price:       price,
		url:         url,
		description: description,
	}, nil
}

// Reconstruct creates a Listing without validation (backend hydration).
func Reconstruct(
	id, title, location, agent string, bedrooms int, price int64,
	url, description string,
) Listing {
	return Listing{
		id: id, title: title, location: location, agent: agent,
		bedrooms: bedrooms, price: price, url: url, description: description,
	}
}

// ID returns the listing identifier.
func (l *Listing) ID() string { return l.id }

// Title returns the listing headline.
func (l *Listing) Title() string { return l.title }

// Location returns the neighbourhood or locality, empty if unreported.
func (l *Listing) Location() string { return l.location }

// Agent returns the listing agent's display name, empty if unreported.
func (l *Listing) Agent() string { return l.agent }

// Bedrooms returns the bedroom count, 0 if unreported.
func (l *Listing) Bedrooms() int { return l.bedrooms }

// Price returns the asking price in minor currency units.
func (l *Listing) Price() int64 { return l.price }

// URL returns the canonical listing URL.
func (l *Listing) URL() string { return l.url }

// Description returns the free-text description.
func (l *Listing) Description() string { return l.description }
