// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports
// multiple sources using koanf as the underlying library.
//
// Sources:
//
//   - YAML files
//   - Environment variables (DECKSHARE_ prefix)
//   - Maps, used for command-line arguments and flags
//
// Priority (highest to lowest):
//
//  1. Command-line arguments and flags
//  2. Environment variables
//  3. Configuration files
//  4. Default values
package confloader
