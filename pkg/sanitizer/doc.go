// Package sanitizer normalizes user supplied text before validation and
// storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized becomes an empty string, which the validators then reject as
// missing.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]) via libphonenumber
//   - Emails: trimmed and lowercased
//   - Free text (titles, names, addresses): whitespace collapsed and trimmed
//   - URLs: http(s) only, lowercase host
//   - Slices: empty values and duplicates removed after normalization
package sanitizer
