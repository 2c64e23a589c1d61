// Package exporter flattens the canonical record collections into CSV tables
// streamed straight to the client. Exports carry a UTF-8 BOM so Excel opens
// them with the right encoding.
package exporter
