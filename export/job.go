package export

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Job is an export running in the background.
type Job struct {
	done chan struct{}
	once sync.Once
	data []byte
	err  error
}

// Start runs fn into an in-memory buffer on its own goroutine. The bytes
// are only handed out if fn succeeds and ctx was not cancelled first.
func Start(ctx context.Context, fn func(io.Writer) error) *Job {
	j := &Job{done: make(chan struct{})}

	go func() {
		var buf bytes.Buffer
		err := ctx.Err()
		if err == nil {
			err = fn(&buf)
		}
		if err == nil {
			err = ctx.Err()
		}
		j.finish(buf.Bytes(), err)
	}()

	return j
}

func (j *Job) finish(data []byte, err error) {
	j.once.Do(func() {
		if err == nil {
			j.data = data
		}
		j.err = err
		close(j.done)
	})
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Poll reports whether the job has finished without blocking.
func (j *Job) Poll() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job finishes.
func (j *Job) Wait() ([]byte, error) {
	<-j.done
	return j.data, j.err
}
