// Package ingest turns heterogeneous training-program spreadsheet exports
// into canonical typed records. It is the first half of the pipeline; the
// second half lives in internal/analytics.
//
// # Architecture
//
// The package is organized leaf-first:
//
//  1. Row/Resolve: alias-based column lookup over one data row
//  2. locateHeader: finds the true header row below leading metadata rows
//  3. locateSheet: picks the worksheet for each of five logical datasets
//  4. coercions: percent, duration, flag, score and date normalization
//  5. normalizers: one per dataset, raw row → canonical record
//  6. Parser: drives the above over a whole workbook or CSV file
//
// # Error Handling
//
// Cell-level problems never fail a run: every coercion has a documented
// default (zero, empty string, "General", "Sin pregunta", "Desconocido").
// Only structural failures — unreadable file, zero worksheets, unreadable
// courses sheet — surface as errors. A missing optional worksheet simply
// yields an empty collection.
package ingest
