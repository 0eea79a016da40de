// Package domain defines the core business entities for Sheaf.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: One admitted content fragment with derived metadata
//   - SourceDetails: Closed set of per-variant provenance (web clip, note, ...)
//   - Collection: Ordered working set of records for one analysis session
//   - Stats: Aggregate counters projected from a collection
//   - AnalysisOptions / AnalysisRequest: User choices and the submitted snapshot
//   - AnalysisResult: What an analysis backend returns
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
