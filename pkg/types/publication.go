// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the IR engine:
// publication records, ranked search results, classification results,
// and configuration.
package types

// Author identifies one author of a crawled publication.
type Author struct {
	// Name is the author's display name.
	Name string `json:"name" yaml:"name"`

	// Profile is an optional URL to the author's profile page.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// PublicationRecord is one academic publication in the corpus. Records are
// immutable once indexed; a data reload replaces the whole set at once.
type PublicationRecord struct {
	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Link is the canonical URL of the publication and its unique identifier.
	Link string `json:"link" yaml:"link"`

	// Authors lists the publication authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// PublishedDate is the publication date as the source reported it.
	// Kept as a string because crawled sources mix formats; ISO-style
	// dates still order correctly as text.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// Abstract is the publication abstract.
	Abstract string `json:"abstract" yaml:"abstract"`
}
