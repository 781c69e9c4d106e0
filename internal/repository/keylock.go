package repository

import "sync"

// KeyMutex 按存储键串行化读-改-写循环。两个并发提交更新同一
// 聚合行时，后者必须基于前者写入的值计算，否则丢失更新。
// 条目按引用计数回收，键空间不会无限增长。
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*keyLockEntry)}
}

// Lock 锁住指定键，返回解锁函数
func (m *KeyMutex) Lock(key string) func() {
	m.mu.Lock()
	entry, ok := m.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		m.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
