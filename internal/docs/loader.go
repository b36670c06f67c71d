// Package docs provides documentation retrieval over markdown runbooks.
package docs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is one markdown file before chunking.
type Document struct {
	Path    string
	Content string
}

// LoadDir loads every markdown file under dir, recursively. A missing
// directory is not an error; it just yields no documents.
func LoadDir(dir string) ([]Document, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var documents []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		documents = append(documents, Document{Path: path, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}
