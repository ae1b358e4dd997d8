package deviceinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore 是落盘的命名空间键值存储，每个命名空间对应目录下的一个 JSON 文件。
//
// 语义上对应 Android 的 SharedPreferences（MODE_PRIVATE）：
// 目录被清空即视为“应用数据被清除”，之后重新生成的标识与之前无关。
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore 创建以 dir 为根目录的存储，目录在首次写入时创建
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir 返回存储根目录
func (s *FileStore) Dir() string { return s.dir }

// Open 打开命名空间；命名空间不能包含路径分隔符
func (s *FileStore) Open(namespace string) (Preferences, error) {
	if s.dir == "" {
		return nil, fmt.Errorf("%w: preferences dir is empty", ErrInvalidConfig)
	}
	if err := validNamespace(namespace); err != nil {
		return nil, err
	}
	return &filePreferences{store: s, path: s.path(namespace)}, nil
}

func (s *FileStore) path(namespace string) string {
	return filepath.Join(s.dir, namespace+".json")
}

func validNamespace(ns string) error {
	if ns == "" || ns == "." || ns == ".." || strings.ContainsAny(ns, `/\`) {
		return fmt.Errorf("%w: bad namespace %q", ErrInvalidConfig, ns)
	}
	return nil
}

// WatchReset 监听命名空间文件被删除或移走（含整个目录被删除），触发 fn。
// 同时监听上级目录：目录被删除后重新创建时自动恢复监听，因此可以观察到多次清除。
// 一次清除可能触发多次 fn。监听在返回前已建立，之后在后台运行直到 ctx 结束。
func (s *FileStore) WatchReset(ctx context.Context, namespace string, fn func()) error {
	if err := validNamespace(namespace); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("deviceinfo: create preferences dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("deviceinfo: watch preferences: %w", err)
	}

	target := filepath.Clean(s.path(namespace))
	dir := filepath.Clean(s.dir)
	parent := filepath.Dir(dir)
	paths := []string{dir}
	if parent != dir {
		paths = append(paths, parent)
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return fmt.Errorf("deviceinfo: watch %s: %w", p, err)
		}
	}
	log := packageLogger().WithField("dir", s.dir)

	go func() {
		defer w.Close()
		gone := false
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				name := filepath.Clean(ev.Name)
				if name == dir && ev.Has(fsnotify.Create) {
					gone = false
					if err := w.Add(dir); err != nil {
						log.WithError(err).Warn("re-watch preferences dir")
						continue
					}
					log.Debug("preferences dir recreated")
					continue
				}
				if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				switch name {
				case target:
					// 原子写会替换文件，某些平台同样报告 Remove
					if _, err := os.Stat(target); err == nil {
						continue
					}
					log.WithField("namespace", namespace).Debug("preferences removed")
					fn()
				case dir:
					// 目录自身和上级目录各报告一次
					if gone {
						continue
					}
					if _, err := os.Stat(dir); err == nil {
						continue
					}
					gone = true
					log.Debug("preferences dir removed")
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("preferences watcher error")
			}
		}
	}()
	return nil
}

type filePreferences struct {
	store *FileStore
	path  string
}

func (p *filePreferences) GetString(key string) (string, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	values, err := p.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (p *filePreferences) PutString(key, value string) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	values, err := p.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("deviceinfo: encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("deviceinfo: create preferences dir: %w", err)
	}
	return writeFileAtomic(p.path, data, 0o600)
}

// load 读取整个命名空间；文件不存在时返回空表
func (p *filePreferences) load() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("deviceinfo: read preferences: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("deviceinfo: decode preferences %s: %w", p.path, err)
	}
	return values, nil
}

// writeFileAtomic 先写同目录临时文件再 rename，读者不会看到半截内容
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("deviceinfo: write preferences: %w", err)
	}
	return nil
}
