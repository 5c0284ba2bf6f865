package payload

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/kevin-valerio/phink/utils"
)

// Corpus is a hash-deduplicated set of raw seed blobs that produced new coverage. The fuzzing core
// does not schedule or mutate these seeds itself (scheduling is an external driver's job); it only
// offers the persistence helpers `cmd fuzz` uses to reseed a later session's corpus directory.
type Corpus struct {
	seeds map[string][]byte
}

// NewCorpus creates an empty Corpus.
func NewCorpus() *Corpus {
	return &Corpus{seeds: make(map[string][]byte)}
}

// Add inserts a raw seed blob into the corpus, keyed by its sha3-256 content hash so that
// byte-identical seeds are never stored twice. Returns the hex-encoded hash used as the key.
func (c *Corpus) Add(raw []byte) string {
	digest := sha3.Sum256(raw)
	key := hex.EncodeToString(digest[:])
	c.seeds[key] = raw
	return key
}

// Seeds returns every distinct seed blob currently held by the corpus.
func (c *Corpus) Seeds() [][]byte {
	seeds := make([][]byte, 0, len(c.seeds))
	for _, s := range c.seeds {
		seeds = append(seeds, s)
	}
	return seeds
}

// Len returns the number of distinct seeds held by the corpus.
func (c *Corpus) Len() int {
	return len(c.seeds)
}

// WriteToDirectory persists every seed in the corpus to its own file, named after its content
// hash, under dir. Existing files are left untouched if already present (content-addressed, so a
// re-write is always a no-op byte-for-byte).
func (c *Corpus) WriteToDirectory(dir string) error {
	if err := utils.MakeDirectory(dir); err != nil {
		return errors.WithStack(err)
	}
	for key, seed := range c.seeds {
		path := filepath.Join(dir, key)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, seed, 0644); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// ReadFromDirectory loads every regular file under dir into the corpus as a seed.
func ReadFromDirectory(dir string) (*Corpus, error) {
	corpus := NewCorpus()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return corpus, nil
		}
		return nil, errors.WithStack(err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		corpus.Add(data)
	}
	return corpus, nil
}
