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
	dotenvOnce sync.Once

	mu     sync.Mutex
	loaded = make(map[reflect.Type]any)
)

// Load parses environment variables into v based on its `env` struct tags.
// The first call in the process also loads a .env file when one exists.
//
// Parsing happens once per struct type; later calls for the same type copy
// the cached result into v. This keeps config immutable for the process
// lifetime even when several packages load overlapping types concurrently.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// A missing .env file is the normal production case.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*v)

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[typ]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	loaded[typ] = *v
	return nil
}

// MustLoad is Load that panics on failure. Intended for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
