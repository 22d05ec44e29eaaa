package fs

import (
	"os"
	"path/filepath"
)

// TempSuffix is appended to a target path while its next version is written.
const TempSuffix = ".tmp"

// WriteFileAtomic replaces path with data.
//
// The data is written to path+TempSuffix, synced, and renamed over path; the
// parent directory is synced afterwards. On any failure the temp file is
// removed and path keeps its previous content.
func WriteFileAtomic(fsys FileSystem, path string, data []byte, perm os.FileMode) (err error) {
	tmpPath := path + TempSuffix

	f, err := fsys.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if f != nil {
			_ = f.Close() // Intentionally ignore: cleanup path
		}
		if err != nil {
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	closeErr := f.Close()
	f = nil
	if closeErr != nil {
		return closeErr
	}

	if err = fsys.Rename(tmpPath, path); err != nil {
		return err
	}
	return SyncDir(fsys, filepath.Dir(path))
}

// SyncDir fsyncs a directory so that a preceding rename is durable.
func SyncDir(fsys FileSystem, dir string) error {
	f, err := fsys.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }() // Intentionally ignore: Sync is the important operation
	return f.Sync()
}
