package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func GetFileExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func IsBinaryContent(content []byte) bool {
	controlCount := 0
	nullCount := 0
	maxCheckLength := 1024

	if len(content) == 0 {
		return false
	}

	checkLength := min(len(content), maxCheckLength)

	for i := 0; i < checkLength; i++ {
		c := content[i]
		if c == 0 {
			nullCount++
		} else if c < 32 && c != '\n' && c != '\r' && c != '\t' && c != '\f' {
			controlCount++
		}
	}

	return nullCount > 0 || float64(controlCount)/float64(checkLength) > 0.1
}

/*
Reads a text file and returns its lines. Fails when the file cannot be read,
exceeds maxSize, or does not decode as UTF-8 text.
*/
func ReadTextLines(path string, maxSize int64) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewError(ReadError, fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		return nil, NewError(ReadError, fmt.Sprintf("%s is a directory", path), nil)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, NewError(ReadError, fmt.Sprintf("cannot read %s (%d bytes)", path, info.Size()), ErrFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ReadError, fmt.Sprintf("failed to read %s", path), err)
	}

	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if IsBinaryContent(content) || !utf8.Valid(content) {
		return nil, NewError(ReadError, fmt.Sprintf("cannot decode %s", path), ErrBinaryContent)
	}

	return SplitLines(string(content)), nil
}
