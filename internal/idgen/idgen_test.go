package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestV4_Generate(t *testing.T) {
	t.Run("generates valid UUID v4", func(t *testing.T) {
		gen := NewV4()

		s, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			t.Fatalf("Generate() = %q, not a UUID: %v", s, err)
		}
		if id.Version() != 4 {
			t.Fatalf("UUID version = %d, want 4", id.Version())
		}
	})

	t.Run("generates distinct values (sanity check)", func(t *testing.T) {
		gen := NewV4()

		seen := make(map[string]struct{}, 50)
		for range 50 {
			id, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if _, ok := seen[id]; ok {
				t.Fatalf("generated duplicate UUID (extremely unlikely): %v", id)
			}
			seen[id] = struct{}{}
		}
	})
}

func TestV7_Generate(t *testing.T) {
	t.Run("generates valid UUID v7", func(t *testing.T) {
		s, err := NewV7().Generate()
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			t.Fatalf("Generate() = %q, not a UUID: %v", s, err)
		}
		if id.Version() != 7 {
			t.Fatalf("UUID version = %d, want 7", id.Version())
		}
	})

	t.Run("accepts custom retry settings", func(t *testing.T) {
		s, err := NewV7(WithRetries(0)).Generate()
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if uuid.MustParse(s).Version() != 7 {
			t.Fatalf("UUID version = %d, want 7", uuid.MustParse(s).Version())
		}
	})
}

func TestBase62_Generate(t *testing.T) {
	t.Run("generates id of configured length", func(t *testing.T) {
		for _, length := range []int{1, 7, 10, 32, 64} {
			id, err := NewBase62(length).Generate()
			if err != nil {
				t.Fatalf("Generate() length %d unexpected error: %v", length, err)
			}
			if len(id) != length {
				t.Errorf("len(id) = %d, want %d", len(id), length)
			}
		}
	})

	t.Run("generates only base62 characters", func(t *testing.T) {
		id, err := RandomBase62(1000)
		if err != nil {
			t.Fatalf("RandomBase62() unexpected error: %v", err)
		}
		for i, c := range id {
			if !strings.ContainsRune(base62Chars, c) {
				t.Fatalf("invalid character %c at position %d", c, i)
			}
		}
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		for _, length := range []int{0, -1} {
			_, err := RandomBase62(length)
			if err == nil {
				t.Fatalf("RandomBase62(%d) expected error, got nil", length)
			}
			if err.Error() != "length must be positive" {
				t.Errorf("error = %q, want %q", err.Error(), "length must be positive")
			}
		}
	})

	t.Run("concurrent generation is safe", func(t *testing.T) {
		gen := NewBase62(DefaultBase62Length)
		const goroutines = 50
		const iterations = 100

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[string]struct{}, goroutines*iterations)
		)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range iterations {
					id, err := gen.Generate()
					if err != nil {
						t.Errorf("Generate() error: %v", err)
						return
					}
					mu.Lock()
					seen[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if len(seen) != goroutines*iterations {
			t.Errorf("expected %d unique ids, got %d", goroutines*iterations, len(seen))
		}
	})
}

func TestBase62Limit(t *testing.T) {
	if len(base62Chars) != 62 {
		t.Fatalf("base62Chars length = %d, want 62", len(base62Chars))
	}
	if base62Limit != 248 {
		t.Errorf("base62Limit = %d, want 248", base62Limit)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		length   int
		check    func(t *testing.T, id string)
		wantErr  bool
	}{
		{
			name:     "base62 with length",
			strategy: Base62,
			length:   12,
			check: func(t *testing.T, id string) {
				if len(id) != 12 {
					t.Errorf("len(id) = %d, want 12", len(id))
				}
			},
		},
		{
			name:     "empty strategy defaults to base62",
			strategy: "",
			length:   0,
			check: func(t *testing.T, id string) {
				if len(id) != DefaultBase62Length {
					t.Errorf("len(id) = %d, want %d", len(id), DefaultBase62Length)
				}
			},
		},
		{
			name:     "base62 length below minimum falls back",
			strategy: Base62,
			length:   3,
			check: func(t *testing.T, id string) {
				if len(id) != DefaultBase62Length {
					t.Errorf("len(id) = %d, want %d", len(id), DefaultBase62Length)
				}
			},
		},
		{
			name:     "uuidv4",
			strategy: UUIDv4,
			check: func(t *testing.T, id string) {
				if uuid.MustParse(id).Version() != 4 {
					t.Errorf("version = %d, want 4", uuid.MustParse(id).Version())
				}
			},
		},
		{
			name:     "uuidv7",
			strategy: UUIDv7,
			check: func(t *testing.T, id string) {
				if uuid.MustParse(id).Version() != 7 {
					t.Errorf("version = %d, want 7", uuid.MustParse(id).Version())
				}
			},
		},
		{
			name:     "unknown strategy",
			strategy: "snowflake",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.strategy, tt.length)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			id, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			tt.check(t, id)
		})
	}
}

func BenchmarkBase62_Generate(b *testing.B) {
	gen := NewBase62(DefaultBase62Length)
	for b.Loop() {
		if _, err := gen.Generate(); err != nil {
			b.Fatalf("Generate() error: %v", err)
		}
	}
}
