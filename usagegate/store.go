package usagegate

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Counter 는 게이트가 영속화하는 상태이다.
// JSON 키는 원래 브라우저 클라이언트가 localStorage 에 쓰던 키를 그대로 따른다.
type Counter struct {
	Count         int    `json:"promptCount"`
	LastResetDate string `json:"lastResetDate"`
}

// Store 는 Counter 의 영속화 포트이다.
// 테스트에서는 인메모리 구현으로 대체한다.
type Store interface {
	Load() (Counter, error)
	Save(Counter) error
}

// FileStore 는 Counter 를 JSON 파일 하나로 영속화한다.
// 브라우저 localStorage 의 로컬 파일 대응물이다.
type FileStore struct {
	Path string
}

// NewFileStore 는 주어진 경로의 파일 스토어를 생성한다.
// path 가 비어 있으면 사용자 설정 디렉터리 아래 chat-relay/usage.json 을 사용한다.
func NewFileStore(path string) *FileStore {
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "chat-relay", "usage.json")
		} else {
			path = filepath.Join(".", "usage.json")
		}
	}
	return &FileStore{Path: path}
}

// Load 는 저장된 Counter 를 읽는다. 파일이 없으면 0 값을 반환한다.
func (s *FileStore) Load() (Counter, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Counter{}, nil
		}
		return Counter{}, err
	}
	var c Counter
	if err := json.Unmarshal(data, &c); err != nil {
		return Counter{}, err
	}
	if c.Count < 0 {
		c.Count = 0
	}
	return c, nil
}

// Save 는 Counter 를 디스크에 기록한다.
func (s *FileStore) Save(c Counter) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}

// MemoryStore 는 테스트 및 fail-open 폴백용 인메모리 스토어이다.
type MemoryStore struct {
	counter Counter
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (Counter, error) { return s.counter, nil }

func (s *MemoryStore) Save(c Counter) error {
	s.counter = c
	return nil
}
