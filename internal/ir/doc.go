// Package ir provides the domain types shared by the store, the stream
// loader and the CLI.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Multi-value issue fields are stored as one text column of
//     delimiter-wrapped entries (see JoinValues)
//   - Stored multi-values are lower-cased and NFC normalized so they compare
//     equal to the case-folded query values
//   - All JSON and YAML tags use snake_case
package ir
