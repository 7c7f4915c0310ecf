package kafka

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProducer_PublishAfterCloseReturnsError(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "receipts", 4, zap.NewNop())

	require.NoError(t, p.Publish([]byte("T01"), []byte("{}")))
	p.Close()
	p.Close()

	assert.NotPanics(t, func() {
		assert.ErrorIs(t, p.Publish([]byte("T02"), []byte("{}")), ErrProducerClosed)
	})
	assert.Len(t, p.inbox, 1)
}

func TestProducer_ConcurrentPublishAndClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "receipts", 64, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Publish([]byte("k"), []byte("v"))
			if err != nil {
				assert.ErrorIs(t, err, ErrProducerClosed)
			}
		}()
	}
	p.Close()
	wg.Wait()
	assert.LessOrEqual(t, len(p.inbox), 32)
}
