package fsutil

// FileInfo describes a single regular file in a directory
type FileInfo struct {
	Name string
	Size int64
}

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFile reads a file and returns its contents
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary
	WriteFile(path string, data []byte) error

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// List returns the regular files in a directory, sorted by name
	List(path string) ([]FileInfo, error)
}
