package export

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCompletes(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	job := Start(context.Background(), func(w io.Writer) error {
		<-release
		_, err := w.Write([]byte("zip"))
		return err
	})

	assert.False(t, job.Poll())
	close(release)

	data, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
	assert.True(t, job.Poll())

	select {
	case <-job.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed")
	}
}

func TestJobFailureYieldsNoBytes(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	job := Start(context.Background(), func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})

	data, err := job.Wait()
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, data)
}

func TestJobCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	job := Start(ctx, func(io.Writer) error {
		called = true
		return nil
	})

	data, err := job.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, data)
	assert.False(t, called)
}
