// Package env loads the agent environment from .env files.
package env

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/joho/godotenv"
)

// Loader defines the interface for agent environment management.
type Loader interface {
	// Load reads variables from a .env file. Later files
	// override earlier ones.
	Load(path string) error
	// Get retrieves a variable. The process environment takes
	// precedence over loaded files.
	Get(key string) string
	// GetRequired retrieves a variable or returns an error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves a variable with a fallback.
	GetWithDefault(key, defaultValue string) string
	// All returns the variables loaded from files.
	All() map[string]string
	// Secrets returns the values of loaded secret variables.
	Secrets() []string
}

// DefaultLoader implements Loader on top of godotenv.
type DefaultLoader struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewLoader creates an empty loader.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{vars: make(map[string]string)}
}

// Load parses path without touching the process environment.
func (l *DefaultLoader) Load(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range vars {
		l.vars[k] = v
	}
	return nil
}

func (l *DefaultLoader) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}

// Secrets returns the non-empty values of variables whose name
// marks them as secret, sorted for stable output.
func (l *DefaultLoader) Secrets() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []string
	for k, v := range l.vars {
		if v != "" && IsSecretKey(k) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// LoadFiles loads every existing path in order. Missing files are
// skipped so an optional .env does not need to exist.
func LoadFiles(paths ...string) (*DefaultLoader, error) {
	l := NewLoader()
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := l.Load(p); err != nil {
			return nil, err
		}
	}
	return l, nil
}
