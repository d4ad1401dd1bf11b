package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"TrendPress/internal/domain"
	"TrendPress/internal/infrastructure/storage"
	"TrendPress/internal/logging"
)

var testLogger = logging.Discard()

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func newStore(clock *fixedClock) *storage.MemoryRepository {
	return storage.NewMemoryRepository(clock.Now)
}

// scriptedBackend answers prompts by matching a marker; failOps makes matching calls fail.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   []string
	replies map[string]string
	err     error
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(_ context.Context, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, prompt)
	if b.err != nil {
		return "", b.err
	}
	for marker, reply := range b.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("no scripted reply")
}

func fixedWords(n int) func() int { return func() int { return n } }

func seedTopic(store *storage.MemoryRepository, source, title string, volume *float64) domain.Topic {
	topic := domain.NewTopic(source, domain.TopicCandidate{Title: title, SearchVolume: volume})
	if _, err := store.InsertTopicIfAbsent(context.Background(), topic); err != nil {
		panic(err)
	}
	topics := store.Topics()
	return topics[len(topics)-1]
}
