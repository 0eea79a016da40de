// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The aggregation engine lives here: Extractor turns raw inputs into
// source records, RequestBuilder validates a collection and options into
// an analysis request, and Session ties both to a guarded collection.
package services
