package filetree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rafabd1/PIIHound/core/loader"
	"github.com/rafabd1/PIIHound/utils"
)

// Kind is the bucket a file lands in.
type Kind string

const (
	KindCode  Kind = "code"
	KindData  Kind = "data"
	KindDocs  Kind = "docs"
	KindOther Kind = "other"
)

var codeExtensions = map[string]bool{
	".py": true, ".r": true, ".rmd": true, ".qmd": true, ".ipynb": true,
	".do": true, ".ado": true, ".m": true, ".jl": true, ".sas": true,
	".sps": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".f": true, ".f90": true, ".js": true, ".ts": true, ".go": true,
	".java": true, ".sh": true, ".sql": true, ".scala": true, ".rs": true,
}

var docExtensions = map[string]bool{
	".md": true, ".txt": true, ".pdf": true, ".doc": true, ".docx": true,
	".rst": true, ".html": true, ".htm": true, ".tex": true, ".odt": true,
}

// textDocExtensions are the documentation files read for the README pass.
// An empty extension only reaches Docs for README files.
var textDocExtensions = map[string]bool{
	".md": true, ".txt": true, ".rst": true, "": true,
}

var defaultExcludedDirs = []string{
	".git", ".hg", ".svn", "__pycache__", "node_modules", ".venv", "venv",
	".ipynb_checkpoints", ".Rproj.user",
}

// IsReadme reports whether the base name starts with "readme".
func IsReadme(path string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Base(path)), "readme")
}

// ClassifyPath buckets a single path by its extension. README files always
// count as documentation.
func ClassifyPath(path string) Kind {
	ext := utils.GetFileExtension(path)
	switch {
	case IsReadme(path) && (docExtensions[ext] || ext == ""):
		return KindDocs
	case codeExtensions[ext]:
		return KindCode
	case loader.IsDataExtension(ext):
		return KindData
	case docExtensions[ext]:
		return KindDocs
	default:
		return KindOther
	}
}

type Options struct {
	// ExcludeDirs are directory base names skipped in addition to the defaults
	ExcludeDirs []string
	// MaxFileSize skips larger files (0 = no limit)
	MaxFileSize int64
}

// Tree lists the files of a replication package by kind, each list sorted.
type Tree struct {
	Root    string
	Code    []string
	Data    []string
	Docs    []string
	Other   []string
	Skipped []string
}

func (t *Tree) Total() int {
	return len(t.Code) + len(t.Data) + len(t.Docs) + len(t.Other)
}

/*
Walks root and buckets every regular file. Unreadable entries are
recorded in Skipped instead of aborting the walk.
*/
func Classify(root string, opts Options) (*Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, utils.NewError(utils.ReadError, fmt.Sprintf("failed to access %s", root), err)
	}

	tree := &Tree{Root: root}
	if !info.IsDir() {
		tree.add(root)
		return tree, nil
	}

	excluded := make(map[string]bool)
	for _, d := range defaultExcludedDirs {
		excluded[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		excluded[strings.TrimSpace(d)] = true
	}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			tree.Skipped = append(tree.Skipped, path)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if path != root && excluded[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if opts.MaxFileSize > 0 {
			if fi, err := entry.Info(); err == nil && fi.Size() > opts.MaxFileSize {
				tree.Skipped = append(tree.Skipped, path)
				return nil
			}
		}

		tree.add(path)
		return nil
	})
	if err != nil {
		return nil, utils.NewError(utils.ReadError, fmt.Sprintf("error walking directory %s", root), err)
	}

	sort.Strings(tree.Code)
	sort.Strings(tree.Data)
	sort.Strings(tree.Docs)
	sort.Strings(tree.Other)
	sort.Strings(tree.Skipped)

	return tree, nil
}

// TextDocs returns the documentation files that hold plain text, READMEs
// first, each group sorted.
func (t *Tree) TextDocs() []string {
	var readmes, others []string
	for _, path := range t.Docs {
		if !textDocExtensions[utils.GetFileExtension(path)] {
			continue
		}
		if IsReadme(path) {
			readmes = append(readmes, path)
		} else {
			others = append(others, path)
		}
	}
	return append(readmes, others...)
}

func (t *Tree) add(path string) {
	switch ClassifyPath(path) {
	case KindCode:
		t.Code = append(t.Code, path)
	case KindData:
		t.Data = append(t.Data, path)
	case KindDocs:
		t.Docs = append(t.Docs, path)
	default:
		t.Other = append(t.Other, path)
	}
}
