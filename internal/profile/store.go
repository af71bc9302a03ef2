package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"pocket/internal/core"
	"pocket/internal/storage"
)

var (
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrPersist         = errors.New("persist profile")
	ErrCorruptData     = errors.New("stored profile is corrupt")
)

// Supported lists the interface languages, default first.
var Supported = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
	language.Hindi,
}

var matcher = language.NewMatcher(Supported)

// DefaultLanguage is used when the profile has none.
const DefaultLanguage = "en"

// NormalizeLanguage accepts any BCP 47 tag whose base language is supported
// and returns the two-letter code ("en-GB" -> "en").
func NormalizeLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
	}
	base, _ := tag.Base()
	for _, sup := range Supported {
		if b, _ := sup.Base(); b == base {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
}

// Tag returns the matched language tag for p, falling back to English.
func Tag(p core.Profile) language.Tag {
	tag, _, _ := matcher.Match(language.Make(p.Language))
	return tag
}

// Patch holds the fields of a profile update. Nil fields are kept.
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Age      *string `json:"age,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	Language *string `json:"language,omitempty"`
}

// Store keeps the single user profile in the "profile" storage entry.
type Store struct {
	mu      sync.RWMutex
	kv      storage.KV
	profile core.Profile
}

// Open loads the persisted profile. A missing entry is an empty profile.
func Open(ctx context.Context, kv storage.KV) (*Store, error) {
	s := &Store{kv: kv}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode parses the stored representation.
func Decode(raw string, present bool) (core.Profile, error) {
	var p core.Profile
	if !present || raw == "" || raw == "null" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return core.Profile{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return p, nil
}

func (s *Store) Reload(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, storage.KeyProfile)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	p, err := Decode(raw, ok)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

func (s *Store) Get() core.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Set merges p into the profile and persists it. Memory is only updated
// when the write succeeds.
func (s *Store) Set(ctx context.Context, p Patch) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Merge(s.profile, p)
	if err != nil {
		return s.profile, err
	}
	if next == s.profile {
		return next, nil
	}

	b, err := json.Marshal(next)
	if err != nil {
		return s.profile, fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.kv.Set(ctx, storage.KeyProfile, string(b)); err != nil {
		return s.profile, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.profile = next
	return next, nil
}

// NeedsSetup reports whether the first-run flow must be shown.
func (s *Store) NeedsSetup() bool {
	return strings.TrimSpace(s.Get().Name) == ""
}

// Complete reports whether every profile field is filled in.
func (s *Store) Complete() bool {
	return len(Missing(s.Get())) == 0
}

// Merge applies p on top of cur without persisting anything.
func Merge(cur core.Profile, p Patch) (core.Profile, error) {
	next := cur
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		next.Age = strings.TrimSpace(*p.Age)
	}
	if p.Gender != nil {
		next.Gender = strings.TrimSpace(*p.Gender)
	}
	if p.Language != nil {
		lang, err := NormalizeLanguage(*p.Language)
		if err != nil {
			return cur, err
		}
		next.Language = lang
	}
	return next, nil
}

// Missing lists the empty profile fields in form order.
func Missing(p core.Profile) []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"name", p.Name}, {"age", p.Age}, {"gender", p.Gender}, {"language", p.Language},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Language returns the profile language code, or the default.
func (s *Store) Language() string {
	if l := s.Get().Language; l != "" {
		return l
	}
	return DefaultLanguage
}
