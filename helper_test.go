package deviceinfo

import (
	"context"
	"errors"
	"io"
	"sync"
)

// physicalProps 是一台真机（Pixel 6）的构建属性
func physicalProps() mapProperties {
	return mapProperties{
		PropVersion:      "14",
		PropSDKVersion:   "34",
		PropModel:        "Pixel 6",
		PropManufacturer: "Google",
		PropProduct:      "oriole",
		PropFingerprint:  "google/oriole/oriole:14/AP1A.240305.019.A1/11445699:user/release-keys",
		PropBrand:        "google",
		PropDevice:       "oriole",
		PropHardware:     "oriole",
		PropTimeZone:     "Europe/Berlin",
	}
}

type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
	puts   int
}

func (m *memPrefs) GetString(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m *memPrefs) PutString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.puts++
	return nil
}

type memStore struct {
	mu     sync.Mutex
	spaces map[string]*memPrefs
}

func newMemStore() *memStore {
	return &memStore{spaces: map[string]*memPrefs{}}
}

func (s *memStore) Open(namespace string) (Preferences, error) {
	return s.space(namespace), nil
}

func (s *memStore) space(namespace string) *memPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.spaces[namespace]
	if !ok {
		p = &memPrefs{values: map[string]string{}}
		s.spaces[namespace] = p
	}
	return p
}

var errStorageOffline = errors.New("storage offline")

// failingStore 每次打开都失败
type failingStore struct{}

func (failingStore) Open(string) (Preferences, error) { return nil, errStorageOffline }

// readOnlyStore 能读不能写
type readOnlyStore struct{}

func (readOnlyStore) Open(string) (Preferences, error) { return readOnlyPrefs{}, nil }

type readOnlyPrefs struct{}

func (readOnlyPrefs) GetString(string) (string, error) { return "", ErrKeyNotFound }
func (readOnlyPrefs) PutString(string, string) error   { return errStorageOffline }

// cannedRunner 把固定输出写入 stdout，并记录调用参数
type cannedRunner struct {
	output string
	err    error

	mu    sync.Mutex
	calls [][]string
}

func (r *cannedRunner) Run(_ context.Context, stdout io.Writer, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	if r.output != "" {
		io.WriteString(stdout, r.output)
	}
	return r.err
}

func newTestHost(props mapProperties, cpuinfo string) Host {
	return Host{
		Properties:  props,
		Preferences: newMemStore(),
		Commands:    &cannedRunner{output: cpuinfo},
	}
}
