package vault

import (
	"encoding/json"
	"fmt"

	"github.com/celerix-dev/celerix-records/pkg/kv"
)

// Bucket encrypts every blob before handing it to the wrapped bucket.
// Sealed values are stored as JSON strings so the backend still holds valid JSON.
type Bucket struct {
	inner kv.Bucket
	key   []byte
}

var _ kv.Bucket = (*Bucket)(nil)

// Wrap returns a sealing Bucket over inner.
func Wrap(inner kv.Bucket, key []byte) (*Bucket, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", KeySize, len(key))
	}
	return &Bucket{inner: inner, key: key}, nil
}

func (b *Bucket) Get(key string) (json.RawMessage, error) {
	raw, err := b.inner.Get(key)
	if err != nil {
		return nil, err
	}
	var sealed string
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return nil, fmt.Errorf("vault data for %s is not a string: %w", key, err)
	}
	plain, err := Decrypt(sealed, b.key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return json.RawMessage(plain), nil
}

func (b *Bucket) Set(key string, val json.RawMessage) error {
	sealed, err := Encrypt(val, b.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return err
	}
	return b.inner.Set(key, raw)
}

func (b *Bucket) Delete(key string) error { return b.inner.Delete(key) }

func (b *Bucket) Keys() ([]string, error) { return b.inner.Keys() }
