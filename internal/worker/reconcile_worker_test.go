package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffReturnsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	backoff(ctx, 5*time.Second)
	assert.Less(t, time.Since(start), time.Second, "cancelled context must cut the retry pause short")
}

func TestBackoffWaitsOutTheDelay(t *testing.T) {
	start := time.Now()
	backoff(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
