package application

import "sync"

// CaptureBuffer accumulates raw audio frames during one recording attempt.
// Frames are appended by whatever delivers them (websocket read loop, host
// microphone callback) and drained by the main flow when the visitor stops
// recording.
//
// Flush swaps the backing slice under the lock, so a frame arriving while a
// flush is in progress lands in the next recording attempt. Each frame is
// included in at most one flushed blob.
type CaptureBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

// Append stores one incoming audio frame. Safe for concurrent use.
func (b *CaptureBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	frame := make([]byte, len(chunk))
	copy(frame, chunk)

	b.mu.Lock()
	b.chunks = append(b.chunks, frame)
	b.size += len(frame)
	b.mu.Unlock()
}

// Flush concatenates all buffered frames in arrival order, clears the buffer,
// and returns the result. An empty buffer yields an empty slice, which the
// caller treats as "no audio captured".
func (b *CaptureBuffer) Flush() []byte {
	b.mu.Lock()
	chunks := b.chunks
	size := b.size
	b.chunks = nil
	b.size = 0
	b.mu.Unlock()

	blob := make([]byte, 0, size)
	for _, chunk := range chunks {
		blob = append(blob, chunk...)
	}
	return blob
}

// Len returns the number of buffered bytes.
func (b *CaptureBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}
