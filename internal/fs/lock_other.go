//go:build !unix

package fs

// Lock is a no-op lock on platforms without flock.
type Lock struct{}

// LockFile always succeeds on this platform.
func LockFile(path string) (*Lock, error) {
	return &Lock{}, nil
}

// Unlock is a no-op.
func (l *Lock) Unlock() error {
	return nil
}
