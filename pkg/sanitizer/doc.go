// Package sanitizer provides input normalization for customer and vehicle data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Invalid input degrades to empty strings rather
// than errors; validation decides what is acceptable afterwards.
//
// Normalization includes:
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - Names and free text: collapse whitespace, trim leading/trailing spaces
//   - Vehicle registration numbers: uppercase with all whitespace removed
//   - Service-type lists: trimmed, deduplicated, order-preserving
package sanitizer
