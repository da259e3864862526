// Package ioutils provides file system utilities for the music-downloader.
//
// Functions that accept a context.Context return its error once it is
// cancelled. Copies stop between chunks, image work between decode and
// encode.
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"
)

// Placeholder replaces every character that is not allowed in a file name.
const Placeholder = "□"

// allowedPunctuation lists the non-alphanumeric characters kept by SanitizeFileName.
const allowedPunctuation = " !£$%^&()_-+=,.;'@#~[]{}"

// SanitizeFileName maps arbitrary text to a string that is safe to use as a
// file or folder name on every supported file system.
//
// Letters, digits and the characters in allowedPunctuation are kept as they
// are. Every other character (path separators, colons, quotes, control
// characters, tabs...) becomes Placeholder. Trailing spaces are removed,
// and a name made only of dots is replaced by placeholders.
//
// The function is idempotent: SanitizeFileName(SanitizeFileName(s)) equals
// SanitizeFileName(s).
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")  // Returns "Song□ Part 1□2"
//	SanitizeFileName("Track   ")        // Returns "Track"
func SanitizeFileName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))

	for _, r := range name {
		if isAllowedRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteString(Placeholder)
		}
	}

	out := strings.TrimRight(sb.String(), " ")
	if out != "" && strings.Trim(out, ".") == "" {
		// "." and ".." would name the current or parent directory.
		return strings.Repeat(Placeholder, len(out))
	}
	return out
}

func isAllowedRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(allowedPunctuation, r)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x). Several workers may
// create the same group folder concurrently; a directory that already exists
// (or appears while we are creating it) is treated as success.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
		}
		return err
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
// A copy interrupted by ctx leaves no destination file behind.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, &ctxReader{ctx: ctx, r: sourceFile}); err != nil {
		destFile.Close()
		if ctx.Err() != nil {
			_ = os.Remove(dst)
		}
		return err
	}

	return destFile.Close()
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MoveFile moves src to dst, replacing dst if it exists.
//
// A plain rename is attempted first. When src and dst live on different
// devices the file is copied and the source removed afterwards. Any other
// failure (permissions, missing parent directory) is returned as is.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}

	return os.Remove(src)
}

// CleanDir removes every file and subdirectory inside dir, keeping dir itself.
//
// A missing directory is not an error. Entries that cannot be removed are
// skipped; the first such error is returned after all entries were visited.
func CleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var firstErr error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
