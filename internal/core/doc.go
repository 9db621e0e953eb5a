// Package core converts CRM service-appointment exports into the fixed
// 14-column upload format.
//
// The package has no transport dependencies. The web server, the CLI and
// the inbox sweeper all call [Service.Convert], which drives the pipeline:
//
//  1. [WrapInput] strips the BOM, decodes legacy charsets and sanitizes UTF-8
//  2. [Reconstructor] rejoins records whose quoted fields span lines
//  3. [LocateHeader] skips report preamble and picks a [Layout]
//  4. [Normalizer] applies the field extractors and drops rows without a
//     Vin or a usable vehicle
//  5. [Deduplicator] keeps the first row per (Vin, Appointment, Time)
//  6. a [Sink] writes CSV or XLSX
//
// # Layouts
//
// A [Layout] maps logical fields to the header text of one export format.
// Layouts are registered at init time with [Register]:
//
//	core.Register(core.Layout{
//	    Key:   "service_appointment",
//	    Label: "Service Appointments",
//	    Columns: core.ColumnMap{Name: "Name", Vehicle: "Vehicle", Vin: "Vin"},
//	})
//
// # Error Handling
//
// Empty input and a missing header are [FatalInputError]s; nothing is
// written when they occur. Row-level problems never fail a run: rows are
// dropped and counted on the [Summary], and unterminated quotes become
// [ParseWarning]s. [MapError] turns any error into a coded user message.
package core
