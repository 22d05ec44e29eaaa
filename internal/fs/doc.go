// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: open, remove, rename, stat and directory operations
//
// Log files are never patched in place. [WriteFileAtomic] publishes a new
// version by writing a sibling temp file, fsyncing it, renaming it over the
// target and fsyncing the parent directory, so a reader observes either the
// previous content or the new content.
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 0})
//	// inject ffs into the component under test
//
// [LockFile] takes an advisory exclusive lock used to keep a second writer
// away from a log file. It is a no-op on platforms without flock.
//
// This package intentionally does NOT include context.Context parameters;
// local filesystem calls are not interruptible at the syscall level.
package fs
