// Package metadata synthesizes the package manifest fragment derived from
// entry points and merges it into the manifest on disk with a canonical,
// deterministic key order.
//
// Two orderings are used:
//
//   - maps produced here (bin, exports) are sorted with CompareKeys, with
//     selected keys forced to the front;
//   - manifest top-level keys follow a priority list, unknown keys keep
//     their relative order after the known ones.
//
// Both are independent of Go map iteration order, so the output bytes are
// stable across runs and RefactorManifest is idempotent.
package metadata
