package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// WriteFileSync writes content and fsyncs the file before closing. Cache
// builds stage every artifact this way inside the temp directory so the final
// rename publishes fully durable bytes.
func WriteFileSync(path string, content []byte, mode os.FileMode) error {
	// #nosec G304 -- path is derived from an explicit caller-provided destination.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// PublishDir renames a fully staged temp directory onto its final path. The
// temp directory must be a sibling of the destination so the rename stays on
// one filesystem and is atomic: the destination either appears complete or
// not at all.
func PublishDir(tempDir, finalDir string) error {
	if filepath.Dir(tempDir) != filepath.Dir(finalDir) {
		return fmt.Errorf("temp dir %s is not a sibling of %s", tempDir, finalDir)
	}
	if err := os.Rename(tempDir, finalDir); err != nil {
		return fmt.Errorf("publish directory: %w", err)
	}
	if parentHandle, err := os.Open(filepath.Dir(finalDir)); err == nil {
		_ = parentHandle.Sync()
		_ = parentHandle.Close()
	}
	return nil
}

// WriteFileAtomic writes content through a temp file and renames it into
// place. Used for standalone artifacts such as selection receipts.
func WriteFileAtomic(path string, content []byte, mode os.FileMode) error {
	parent := filepath.Dir(path)
	base := filepath.Base(path)

	tempFile, err := os.CreateTemp(parent, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(content); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS != "windows" {
			return fmt.Errorf("rename temp file: %w", err)
		}
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("remove destination before rename: %w", removeErr)
		}
		if renameErr := os.Rename(tempPath, path); renameErr != nil {
			return fmt.Errorf("rename temp file after remove: %w", renameErr)
		}
	}
	cleanup = false

	if dirHandle, err := os.Open(parent); err == nil {
		_ = dirHandle.Sync()
		_ = dirHandle.Close()
	}
	return nil
}
