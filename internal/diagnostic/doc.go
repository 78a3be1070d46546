// Package diagnostic carries the non-fatal findings of schema loading, class
// generation, and builder-tree construction.
//
// Fatal problems are returned as errors. Everything a caller may want to
// inspect without aborting is collected here instead:
//   - required values that were missing when a record was built
//   - child counts that do not match a declared quantity
//   - numeric values whose precision was changed to fit a declared dtype
//   - contradicting name declarations in a schema
//   - stored builder trees that do not match their specs
package diagnostic
