// Package logstore implements the append-only prediction log.
//
// A log is a single object in a blobstore.BlobStore holding one columnar
// file (see internal/colfile). Its schema only ever grows: when a log is
// opened with a wider desired schema, the missing columns are appended and
// backfilled with nulls, and the object is rewritten.
//
// Every write replaces the whole object through BlobStore.Put, so a failed
// write leaves the previous version readable:
//
//	desired := schema.Desired([]imagemetric.ID{imagemetric.Contrast})
//	st, err := logstore.Open(ctx, blobstore.NewLocalStore("logs"), logstore.ObjectName("detector", "42"), desired)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	report, err := st.Append(ctx, table.Row{...})
//
// A Store is not safe for concurrent use.
package logstore
