package svgraster

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// blobStore holds transient markup buffers, addressed by handles
// such as "blob:3". A handle must be revoked once the decoding is
// started: readers already opened stay valid.
type blobStore struct {
	mu    sync.Mutex
	next  int
	blobs map[string][]byte
}

func (bs *blobStore) create(data []byte) string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.blobs == nil {
		bs.blobs = make(map[string][]byte)
	}
	bs.next++
	handle := fmt.Sprintf("blob:%d", bs.next)
	bs.blobs[handle] = data
	return handle
}

func (bs *blobStore) open(handle string) (io.Reader, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	data, ok := bs.blobs[handle]
	if !ok {
		return nil, fmt.Errorf("unknown or revoked handle %s", handle)
	}
	return bytes.NewReader(data), nil
}

func (bs *blobStore) revoke(handle string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.blobs, handle)
}

func (bs *blobStore) len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.blobs)
}
