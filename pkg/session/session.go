// Package session persists the active space and the chosen partner identity
// across restarts. It holds a single slot: one space, one identity.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/lovenote/pkg/journal"
)

const (
	keySpace      = "space"
	keyIdentity   = "identity"
	keyLastSecret = "last_secret"
)

// ErrMalformed is logged when the persisted space cannot be decoded.
var ErrMalformed = errors.New("session: malformed persisted space")

// Session is what Restore hands back: the space and, once chosen, who is
// writing. Identity is empty until a partner is selected.
type Session struct {
	Space    journal.Space
	Identity string
}

// Sessions is the lifecycle the client drives.
type Sessions interface {
	Restore() (*Session, error)
	Save(space journal.Space) error
	SaveIdentity(name string) error
	Clear() error
	LastSecret() string
	SaveLastSecret(secret string) error
}

// Store is a Sessions backed by diskv, one file per key.
type Store struct {
	d *diskv.Diskv
}

var _ Sessions = (*Store)(nil)

// Open creates the session directory if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: path required")
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("session: ensure path: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          path,
		AdvancedTransform: flatTransform,
		InverseTransform:  flatInverse,
		PathPerm:          0o700,
		FilePerm:          0o600,
		// No cache: another process may log in or out under us.
		CacheSizeMax: 0,
	})}, nil
}

// Restore returns the persisted session, or nil when there is none. A space
// record that cannot be decoded is erased together with the identity and
// treated as no session.
func (s *Store) Restore() (*Session, error) {
	if !s.d.Has(keySpace) {
		return nil, nil
	}
	raw, err := s.d.Read(keySpace)
	if err != nil {
		return nil, fmt.Errorf("session: read space: %w", err)
	}
	var space journal.Space
	if err := json.Unmarshal(raw, &space); err != nil || strings.TrimSpace(space.ID) == "" {
		if err == nil {
			err = errors.New("missing id")
		}
		log.Printf("%v: %v", ErrMalformed, err)
		if cerr := s.Clear(); cerr != nil {
			log.Printf("session: clear after malformed space: %v", cerr)
		}
		return nil, nil
	}

	if space.Secret != "" {
		if err := s.SaveLastSecret(space.Secret); err != nil {
			log.Printf("session: remember secret: %v", err)
		}
	}

	out := &Session{Space: space}
	if name := s.readString(keyIdentity); name != "" {
		if space.HasPartner(name) {
			out.Identity = name
		} else {
			log.Printf("session: dropping identity %q, not a partner of %s", name, space.ID)
			_ = s.erase(keyIdentity)
		}
	}
	return out, nil
}

// Save persists the space and remembers its secret for the login form.
func (s *Store) Save(space journal.Space) error {
	data, err := json.Marshal(space)
	if err != nil {
		return fmt.Errorf("session: encode space: %w", err)
	}
	if err := s.d.Write(keySpace, data); err != nil {
		return fmt.Errorf("session: write space: %w", err)
	}
	// A new space starts without a chosen partner.
	if err := s.erase(keyIdentity); err != nil {
		return err
	}
	if space.Secret != "" {
		return s.SaveLastSecret(space.Secret)
	}
	return nil
}

// SaveIdentity persists the selected partner name.
func (s *Store) SaveIdentity(name string) error {
	if err := s.d.Write(keyIdentity, []byte(name)); err != nil {
		return fmt.Errorf("session: write identity: %w", err)
	}
	return nil
}

// Clear erases the space and identity. The last secret survives so the
// login form can be prefilled next time.
func (s *Store) Clear() error {
	return errors.Join(s.erase(keySpace), s.erase(keyIdentity))
}

// LastSecret returns the most recently used secret, or "".
func (s *Store) LastSecret() string {
	return s.readString(keyLastSecret)
}

// SaveLastSecret remembers secret in its own slot.
func (s *Store) SaveLastSecret(secret string) error {
	if err := s.d.Write(keyLastSecret, []byte(secret)); err != nil {
		return fmt.Errorf("session: write last secret: %w", err)
	}
	return nil
}

func (s *Store) readString(key string) string {
	if !s.d.Has(key) {
		return ""
	}
	b, err := s.d.Read(key)
	if err != nil {
		log.Printf("session: read %s: %v", key, err)
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *Store) erase(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: erase %s: %w", key, err)
	}
	return nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverse(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
