// Package builtin provides test data helpers for browser tests.
//
// Available helpers:
//   - RandomString(opts): random string from the enabled character classes
//   - RandomID(): 32 random hex characters
//   - Timestamp(): current Unix timestamp in seconds
//   - Base64Encode / Base64Decode: standard base64
//   - ReadJSON(path, v): decode a JSON fixture file
package builtin
