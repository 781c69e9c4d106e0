package service

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// memKV 内存实现，与 redis 后端语义一致：缺失键不报错
type memKV struct {
	mu   sync.RWMutex
	data map[string]string

	failSet    bool   // 模拟写入失败
	failPrefix string // 仅匹配该前缀的键写入失败
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.failSet || (m.failPrefix != "" && strings.HasPrefix(key, m.failPrefix)) {
		return errSetFailed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) MGet(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memKV) KeysByPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memKV) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

var errSetFailed = errSentinel("kv set failed")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// testRepos 基于内存 KV 的仓储集合
type testRepos struct {
	kv        *memKV
	history   *repository.HistoryRepository
	analytics *repository.AnalyticsRepository
	profile   *repository.ProfileRepository
	streak    *repository.StreakRepository
}

func newTestRepos() *testRepos {
	kv := newMemKV()
	locks := repository.NewKeyMutex()
	return &testRepos{
		kv:        kv,
		history:   repository.NewHistoryRepository(kv, locks),
		analytics: repository.NewAnalyticsRepository(kv, locks),
		profile:   repository.NewProfileRepository(kv, locks),
		streak:    repository.NewStreakRepository(kv, locks),
	}
}

// fakeXPMirror 记录镜像调用
type fakeXPMirror struct {
	mu    sync.Mutex
	calls map[uint]int
}

func newFakeXPMirror() *fakeXPMirror {
	return &fakeXPMirror{calls: make(map[uint]int)}
}

func (f *fakeXPMirror) SetXP(userID uint, xp int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID] = xp
	return nil
}
