package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

func TestSendRecvFIFO(t *testing.T) {
	t.Parallel()
	q := New("test", 4)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Send(msg.NewSeek(int64(i))), "send %d", i)
	}
	for i := 0; i < 3; i++ {
		m, err := q.Recv()
		require.NoError(t, err, "recv %d", i)
		assert.Equal(t, int64(i), m.SeekTS, "expected FIFO order")
	}
}

func TestSendBlocksUntilCapacity(t *testing.T) {
	t.Parallel()
	q := New("test", 1)
	require.NoError(t, q.Send(msg.NewSync()))

	done := make(chan struct{})
	go func() {
		assert.NoError(t, q.Send(msg.NewStart()), "blocked send")
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("send should have blocked on full queue")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := q.Recv()
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("blocked send never unblocked after recv freed capacity")
	}
}

func TestRecvBlocksUntilMessage(t *testing.T) {
	t.Parallel()
	q := New("test", 2)

	result := make(chan msg.Message, 1)
	go func() {
		m, err := q.Recv()
		assert.NoError(t, err)
		result <- m
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, q.Send(msg.NewSeek(99)))

	select {
	case m := <-result:
		assert.Equal(t, int64(99), m.SeekTS)
	case <-time.After(time.Second):
		t.Fatalf("recv never unblocked after send")
	}
}

func TestSendLatchDrainsThenFails(t *testing.T) {
	t.Parallel()
	q := New("test", 4)
	require.NoError(t, q.Send(msg.NewSeek(1)))
	require.NoError(t, q.Send(msg.NewSeek(2)))
	q.SetSendError(perrors.CodeEOS)

	m, err := q.Recv()
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.SeekTS, "expected first drained message")

	m, err = q.Recv()
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.SeekTS, "expected second drained message")

	_, err = q.Recv()
	require.Error(t, err, "expected latched error after drain")
	code, ok := perrors.QueueErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, perrors.CodeEOS, code)
}

func TestRecvLatchFailsSendImmediately(t *testing.T) {
	t.Parallel()
	q := New("test", 1)
	q.SetRecvError(perrors.CodeExit)

	err := q.Send(msg.NewSync())
	require.Error(t, err, "expected send to fail immediately when recv-latch set")
	code, ok := perrors.QueueErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, perrors.CodeExit, code)
}

func TestRecvLatchWakesBlockedSend(t *testing.T) {
	t.Parallel()
	q := New("test", 1)
	require.NoError(t, q.Send(msg.NewSync()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- q.Send(msg.NewStart())
	}()

	time.Sleep(30 * time.Millisecond)
	q.SetRecvError(perrors.CodeNotSupported)

	select {
	case err := <-errCh:
		assert.Error(t, err, "expected blocked send to fail once recv-latch set")
	case <-time.After(time.Second):
		t.Fatalf("blocked send never woke after SetRecvError")
	}
}

func TestTryRecvWouldBlock(t *testing.T) {
	t.Parallel()
	q := New("test", 2)
	_, err := q.TryRecv()
	assert.Equal(t, ErrWouldBlock, err)

	require.NoError(t, q.Send(msg.NewSync()))
	_, err = q.TryRecv()
	assert.NoError(t, err)
}

func TestFlushReleasesWithoutAffectingLatches(t *testing.T) {
	t.Parallel()
	q := New("test", 4)
	require.NoError(t, q.Send(msg.NewPacket(&msg.Packet{Payload: make([]byte, 8)})))
	q.Flush()
	assert.Equal(t, 0, q.Len(), "expected queue empty after flush")
	// latches untouched: a subsequent send/recv still behaves normally
	assert.NoError(t, q.Send(msg.NewSync()), "send after flush")
}

func TestResetErrors(t *testing.T) {
	t.Parallel()
	q := New("test", 1)
	q.SetSendError(perrors.CodeEOS)
	q.SetRecvError(perrors.CodeExit)
	q.ResetErrors()

	assert.NoError(t, q.Send(msg.NewSync()), "expected send to succeed after reset")
	_, err := q.Recv()
	assert.NoError(t, err, "expected recv to succeed after reset")
}

func TestConcurrentProducersConsumers(t *testing.T) {
	t.Parallel()
	q := New("test", 8)
	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Send(msg.NewSeek(int64(i)))
		}
		q.SetSendError(perrors.CodeEOS)
	}()

	received := 0
	go func() {
		defer wg.Done()
		for {
			_, err := q.Recv()
			if err != nil {
				return
			}
			received++
		}
	}()
	wg.Wait()
	assert.Equal(t, n, received, "expected all messages received")
}
