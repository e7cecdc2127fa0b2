package sending

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bde-platform/mailer/internal/domain"
)

func messagesOf(n int) []domain.EmailMessage {
	msgs := make([]domain.EmailMessage, n)
	for i := range msgs {
		msgs[i] = domain.EmailMessage{To: fmt.Sprintf("u%d@example.com", i)}
	}
	return msgs
}

func TestChunkSplitsAndPreservesOrder(t *testing.T) {
	tests := []struct {
		n, size    int
		wantChunks int
		wantLast   int
	}{
		{n: 0, size: 100, wantChunks: 0},
		{n: 1, size: 100, wantChunks: 1, wantLast: 1},
		{n: 100, size: 100, wantChunks: 1, wantLast: 100},
		{n: 101, size: 100, wantChunks: 2, wantLast: 1},
		{n: 150, size: 100, wantChunks: 2, wantLast: 50},
		{n: 250, size: 100, wantChunks: 3, wantLast: 50},
		{n: 300, size: 100, wantChunks: 3, wantLast: 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.n, tt.size), func(t *testing.T) {
			chunks := chunk(messagesOf(tt.n), tt.size)
			require.Len(t, chunks, tt.wantChunks)
			if tt.wantChunks == 0 {
				return
			}
			for _, ch := range chunks[:len(chunks)-1] {
				assert.Len(t, ch, tt.size)
			}
			assert.Len(t, chunks[len(chunks)-1], tt.wantLast)

			i := 0
			for _, ch := range chunks {
				for _, msg := range ch {
					assert.Equal(t, fmt.Sprintf("u%d@example.com", i), msg.To)
					i++
				}
			}
			assert.Equal(t, tt.n, i)
		})
	}
}
