// Package knowledge chunks reference documents for memory-index ingestion.
package knowledge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultChunkSize bounds chunk length in bytes.
const DefaultChunkSize = 800

// Chunk is a text fragment paired with its source filename.
type Chunk struct {
	Filename string
	Text     string
}

// LoadDir loads and chunks all .txt, .md, and .pdf files from dir.
// Returns nil without error if the directory is empty or does not exist.
func LoadDir(dir string, maxLen int) ([]Chunk, error) {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge: read dir %q: %w", dir, err)
	}

	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))

		var text string
		switch ext {
		case ".txt", ".md":
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("knowledge: read %q: %w", name, err)
			}
			text = string(data)
		case ".pdf":
			var err error
			text, err = readPDF(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("knowledge: read pdf %q: %w", name, err)
			}
		default:
			continue
		}

		for _, c := range Split(text, maxLen) {
			chunks = append(chunks, Chunk{Filename: name, Text: c})
		}
	}

	return chunks, nil
}

// Split breaks text into chunks of at most maxLen bytes along paragraph
// boundaries. A single paragraph longer than maxLen becomes its own chunk.
func Split(text string, maxLen int) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	current := strings.Builder{}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > maxLen {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
