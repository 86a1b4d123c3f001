package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilConfig is returned when Load receives a nil pointer.
	ErrNilConfig = errors.New("config: target must be a non-nil pointer")
	// ErrNotStruct is returned when the target type is not a struct.
	ErrNotStruct = errors.New("config: target must point to a struct")
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (struct value)
	loadMu     sync.Mutex
)

// Load populates cfg from the environment. The first call also loads a
// .env file from the working directory when present. Each struct type is
// parsed once; later calls copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return ErrNotStruct
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case in containers.
		_ = godotenv.Load()
	})

	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}
	cache.Store(typ, parsed)
	*cfg = parsed
	return nil
}

// MustLoad is Load that panics on error. Intended for process startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
