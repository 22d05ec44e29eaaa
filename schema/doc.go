// Package schema defines the record layout of a prediction log.
//
// A [Schema] is an ordered list of typed [Field]s. The mandatory prediction
// fields always come first, followed by one Float32 column per enabled image
// metric. [Reconcile] widens an existing schema towards a desired one; it only
// ever appends columns, so a log's schema grows monotonically over its life.
package schema
