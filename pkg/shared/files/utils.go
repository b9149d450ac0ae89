package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading tilde (~ or ~/...) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
}

// ValidatePath checks that path names a regular file that can be read.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// CreateFolderIfNotExists creates folder and its parents when missing.
func CreateFolderIfNotExists(folder string) error {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("unable to create folder %q: %w", folder, err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to check folder %q: %w", folder, err)
	}
	return nil
}

// WriteFile replaces the content of outputFile with data.
func WriteFile(outputFile string, data []byte) (err error) {
	file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed creating file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed closing file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(file)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing data to file: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing data to file: %w", err)
	}
	return nil
}

// DetermineFileFullPath returns the file to write and its folder. An existing directory,
// or a missing path without an extension, is treated as a folder and gets nameTemplate appended.
func DetermineFileFullPath(path, nameTemplate string) (string, string, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to unwrap path %q: %w", path, err)
	}
	path = filepath.Clean(path)

	fileInfo, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", fmt.Errorf("failed to unwrap path %q: %w", path, err)
	}

	if (err == nil && fileInfo.IsDir()) || (err != nil && filepath.Ext(path) == "") {
		return filepath.Join(path, nameTemplate), path, nil
	}
	return path, filepath.Dir(path), nil
}
