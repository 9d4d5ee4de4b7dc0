package interprocess

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelEcho(t *testing.T) {
	opt := testOptions(t, 1024)

	server, err := NewChannel(opt, false)
	require.NoError(t, err)
	defer server.Close()

	client, err := NewChannel(opt, true)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const rounds = 200
	go func() {
		// echo every request back to the client
		for i := 0; i < rounds; i++ {
			msg, err := server.Subscriber().Dequeue(ctx, nil)
			if err != nil {
				return
			}
			for !server.Publisher().TryEnqueue(msg) {
			}
		}
	}()

	data := []byte("1234567890123")
	for i := 0; i < rounds; i++ {
		require.True(t, client.Publisher().TryEnqueue(data), "round %d", i)
		got, err := client.Subscriber().Dequeue(ctx, nil)
		require.NoError(t, err, "round %d", i)
		require.Equal(t, data, got, "round %d", i)
	}
}

func TestChannelPairsInverseQueues(t *testing.T) {
	opt := testOptions(t, 256)

	server, err := NewChannel(opt, false)
	require.NoError(t, err)
	defer server.Close()

	client, err := NewChannel(opt, true)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "P"+opt.Name, server.Publisher().q.opt.Name)
	assert.Equal(t, "S"+opt.Name, server.Subscriber().q.opt.Name)
	assert.Equal(t, "S"+opt.Name, client.Publisher().q.opt.Name)
	assert.Equal(t, "P"+opt.Name, client.Subscriber().q.opt.Name)

	// the two directions are independent queues
	require.True(t, server.Publisher().TryEnqueue([]byte{1}))
	_, ok := server.Subscriber().TryDequeue(nil)
	assert.False(t, ok)
	got, ok := client.Subscriber().TryDequeue(nil)
	require.True(t, ok)
	assert.Equal(t, []byte{1}, got)
}

func TestChannelBadOptions(t *testing.T) {
	_, err := NewChannel(NewOptions("", WithPath(t.TempDir())), false)
	assert.Error(t, err)
}
