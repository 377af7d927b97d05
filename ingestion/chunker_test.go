package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunker(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: DefaultChunkSize, overlap: DefaultChunkOverlap},
		{name: "zero overlap", size: 100, overlap: 0},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChunking)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	chunker, err := NewChunker(100, 20)
	require.NoError(t, err)

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks, err := chunker.Chunk("note.txt", "a short note")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "a short note", chunks[0])
	})

	t.Run("long text splits with bounded chunks", func(t *testing.T) {
		text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
		chunks, err := chunker.Chunk("fable.md", text)
		require.NoError(t, err)
		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 100)
			assert.NotEmpty(t, strings.TrimSpace(chunk))
		}
	})

	t.Run("extension gate", func(t *testing.T) {
		for _, filename := range []string{"report.pdf", "slides.pptx", "noext", "archive.tar.gz"} {
			_, err := chunker.Chunk(filename, "content")
			assert.ErrorIs(t, err, ErrUnsupportedFileType, filename)
		}
		for _, filename := range []string{"a.txt", "b.md", "C.TXT"} {
			_, err := chunker.Chunk(filename, "content")
			assert.NoError(t, err, filename)
		}
	})

	t.Run("whitespace-only content yields no chunks", func(t *testing.T) {
		chunks, err := chunker.Chunk("blank.txt", "   \n\n\t  ")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}
