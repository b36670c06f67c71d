package docs

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed corpus/*.md
var corpusFS embed.FS

// LoadEmbedded returns the runbooks compiled into the binary. They
// cover the common troubleshooting topics so retrieval works with no
// docs directory configured.
func LoadEmbedded() ([]Document, error) {
	entries, err := fs.Glob(corpusFS, "corpus/*.md")
	if err != nil {
		return nil, err
	}

	documents := make([]Document, 0, len(entries))
	for _, path := range entries {
		data, err := corpusFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read embedded doc %s: %w", path, err)
		}
		documents = append(documents, Document{Path: path, Content: string(data)})
	}
	return documents, nil
}
