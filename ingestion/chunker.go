package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is how many characters consecutive chunks share.
	DefaultChunkOverlap = 200
)

// textExtensions lists the file types the chunker accepts.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Chunker splits document text into overlapping chunks sized for
// embedding.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a chunker with the given size and overlap.
// The overlap must be smaller than the size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, size, overlap)
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

// Chunk splits the document's content. The filename's extension gates
// which documents are chunked at all; anything but plain text is
// rejected before splitting.
func (c *Chunker) Chunk(filename, content string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !textExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}

	chunks, err := c.splitter.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("splitting text: %w", err)
	}

	// Drop whitespace-only chunks; they embed to noise.
	usable := chunks[:0]
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			usable = append(usable, chunk)
		}
	}
	return usable, nil
}
