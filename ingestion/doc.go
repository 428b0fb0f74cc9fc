// Package ingestion imports batches of news queries into deduplicated
// content records.
//
// The Importer type manages the import workflow for a batch of query
// definitions:
//   - Filtering out query types the importer cannot service
//   - Mapping each query to a provider request
//   - Fetching responses concurrently on a bounded worker pool
//   - Building content-addressed records and deduplicating them by hash
//   - Recording exactly one metric per dispatched query
//
// ImportBatch blocks until every dispatched query has reported. A failing
// query contributes a failure metric and is forwarded to the configured
// ErrorObserver; it never affects other queries or fails the batch.
package ingestion
