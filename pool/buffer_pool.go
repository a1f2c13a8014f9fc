package pool

import (
	"bytes"
	"sync"
)

// maxPooledSize keeps oversized buffers from pinning memory in the pool.
const maxPooledSize = 64 << 10

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

func AcquireBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func ReleaseBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

// Bytes returns a copy of buf's contents that stays valid after the buffer
// is released.
func Bytes(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
