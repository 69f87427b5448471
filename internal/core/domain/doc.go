// Package domain defines the core domain models for deckshare.
//
// Domain models are plain values without IO dependencies. This package contains:
//
//   - Entry: one directory child as exposed by the browse API
//   - Errors: coded domain errors shared by the listing, HTTP and bootstrap layers
package domain
