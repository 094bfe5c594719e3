package app

import (
	"hash/fnv"
	"sync"
)

const messageLockStripes = 256

// messageLocks index-addressed lock, same message id always maps to the same mutex
type messageLocks struct {
	stripes [messageLockStripes]sync.Mutex
}

func (l *messageLocks) lock(messageID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(messageID))
	m := &l.stripes[h.Sum32()%messageLockStripes]
	m.Lock()
	return m.Unlock
}
