package helper

import "os"

// CreateFolder makes the folder and any missing parents.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0o755)
}
