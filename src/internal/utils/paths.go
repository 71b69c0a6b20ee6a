package utils

import "path/filepath"

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir.
func GetAbsolutePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}

// ResolveFileEntry returns the absolute form of entry when entry names a
// regular file relative to baseDir. Any other entry (an IP, a CIDR, a
// hostname, an absolute path) is returned unchanged.
func ResolveFileEntry(entry, baseDir string) string {
	if baseDir == "" || filepath.IsAbs(entry) {
		return entry
	}
	candidate := GetAbsolutePath(entry, baseDir)
	if IsRegularFile(candidate) {
		return candidate
	}
	return entry
}
