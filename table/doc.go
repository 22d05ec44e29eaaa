// Package table holds prediction logs in memory as typed, nullable columns.
//
// A [Table] pairs a [schema.Schema] with one [Column] per field. Columns store
// their values in a slice of the declared storage type and track nulls in a
// roaring bitmap, so a Float32 column round-trips bit-exact through the file
// codec. Caller input arrives as untyped [Row]s of [Value]s; [BuildRow] coerces
// them against the schema and reports what it had to null out.
package table
