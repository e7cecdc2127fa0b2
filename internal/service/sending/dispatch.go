package sending

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/logger"
)

// dispatchBatch sends messages through the provider batch endpoint in
// sequential chunks. A failed chunk is logged and skipped; the remaining
// chunks still run. Returns the provider-acknowledged count and the
// number of chunks attempted.
func (s *Service) dispatchBatch(ctx context.Context, campaignID string, messages []domain.EmailMessage) (int, int) {
	chunks := chunk(messages, s.batchSize)
	sent := 0
	for i, ch := range chunks {
		// The batch endpoint rejects scheduled_at on individual entries.
		for j := range ch {
			ch[j].ScheduledAt = nil
		}
		results, err := s.provider.SendMessages(ctx, ch)
		if err != nil {
			s.log.Error("batch chunk failed",
				"campaign_id", campaignID,
				"chunk", i+1,
				"chunk_size", len(ch),
				"error", err)
			continue
		}
		sent += len(results)
	}
	return sent, len(chunks)
}

// dispatchUnitary sends every message through the unitary endpoint
// concurrently and waits for all of them to settle. Individual failures
// are logged and excluded from the returned count.
func (s *Service) dispatchUnitary(ctx context.Context, campaignID string, messages []domain.EmailMessage) int {
	var wg sync.WaitGroup
	var sent atomic.Int64

	for i := range messages {
		wg.Add(1)
		go func(msg domain.EmailMessage) {
			defer wg.Done()
			if _, err := s.provider.SendMessage(ctx, msg); err != nil {
				s.log.Error("unitary send failed",
					"campaign_id", campaignID,
					"email", logger.RedactEmail(msg.To),
					"error", err)
				return
			}
			sent.Add(1)
		}(messages[i])
	}
	wg.Wait()
	return int(sent.Load())
}

// chunk splits messages into slices of at most size entries, preserving
// order. Chunks share backing storage with the input slice.
func chunk(messages []domain.EmailMessage, size int) [][]domain.EmailMessage {
	if len(messages) == 0 {
		return nil
	}
	chunks := make([][]domain.EmailMessage, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		chunks = append(chunks, messages[start:end:end])
	}
	return chunks
}
