// Package ir provides the typed value model shared by every kgen stage.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Three value kinds only: Bool, Int (int64) and String. No floats.
//   - Mapping iteration order is insertion order; the resolver inserts in
//     schema declaration order. Hashing ignores order.
//   - Digests use RFC 8785 canonical JSON and SHA-256 with domain separation.
package ir
