// Package telemetry exposes importer activity as Prometheus metrics.
//
// Collectors implements ingestion.Instruments and is passed to the
// importer with ingestion.WithInstruments. Start serves the registered
// metrics on /metrics.
package telemetry
