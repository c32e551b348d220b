package inventory

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/rafabd1/PIIHound/utils"
)

type FileEntry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Inventory lists file checksums and the groups of byte-identical files.
type Inventory struct {
	Files      []FileEntry `json:"files"`
	Duplicates [][]string  `json:"duplicates"`
	Failed     []string    `json:"failed,omitempty"`
}

func (inv *Inventory) TotalSize() int64 {
	var total int64
	for _, f := range inv.Files {
		total += f.Size
	}
	return total
}

// Checksum returns the hex xxhash64 digest of a file.
func Checksum(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, utils.NewError(utils.ReadError, fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	h := xxhash.New()
	n, err := io.Copy(h, file)
	if err != nil {
		return "", 0, utils.NewError(utils.ReadError, fmt.Sprintf("failed to read %s", path), err)
	}

	return fmt.Sprintf("%016x", h.Sum64()), n, nil
}

/*
Checksums every path. Files that cannot be read are listed in Failed.
Duplicate groups only contain files with non-zero size.
*/
func Build(paths []string) *Inventory {
	inv := &Inventory{}
	byChecksum := make(map[string][]string)

	for _, path := range paths {
		sum, size, err := Checksum(path)
		if err != nil {
			inv.Failed = append(inv.Failed, path)
			continue
		}
		inv.Files = append(inv.Files, FileEntry{Path: path, Size: size, Checksum: sum})
		if size > 0 {
			byChecksum[sum] = append(byChecksum[sum], path)
		}
	}

	for _, group := range byChecksum {
		if len(group) > 1 {
			sort.Strings(group)
			inv.Duplicates = append(inv.Duplicates, group)
		}
	}
	sort.Slice(inv.Duplicates, func(i, j int) bool {
		return inv.Duplicates[i][0] < inv.Duplicates[j][0]
	})

	return inv
}
