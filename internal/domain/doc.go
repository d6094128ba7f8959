// Package domain defines the core business types for the renewal monitor.
//
// Types in this package are pure value objects with no behavior beyond
// validation and formatting helpers. They are the shared language between
// connectors, the enrichment pipeline, and the HTTP layer.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *http.Request, no API client types in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Pure helper functions on the types are allowed
//   - Constants and enums belong here
package domain
