// Package settings holds the city-to-spreadsheet configuration and the
// ports for its persistence.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Settings maps configured city names to destination spreadsheet URLs,
// preserving the order keys were configured in. Order matters: city
// resolution takes the first prefix match over the configured keys.
type Settings struct {
	order []string
	urls  map[string]string
}

// New returns empty settings.
func New() *Settings {
	return &Settings{urls: make(map[string]string)}
}

// Set adds or updates a city's destination URL. New cities append to the
// insertion order; existing cities keep their position.
func (s *Settings) Set(city, url string) {
	if s.urls == nil {
		s.urls = make(map[string]string)
	}
	if _, ok := s.urls[city]; !ok {
		s.order = append(s.order, city)
	}
	s.urls[city] = url
}

// URL returns the destination spreadsheet URL for a city.
func (s *Settings) URL(city string) (string, bool) {
	u, ok := s.urls[city]
	return u, ok
}

// Cities returns configured city names in insertion order.
func (s *Settings) Cities() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of configured cities.
func (s *Settings) Len() int {
	return len(s.order)
}

// MarshalJSON encodes settings as a JSON object in insertion order.
func (s *Settings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, city := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(city)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.urls[city])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order, which a plain
// map would lose.
func (s *Settings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("settings: expected object, got %v", tok)
	}

	s.order = nil
	s.urls = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		city, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("settings: non-string key %v", keyTok)
		}
		var url string
		if err := dec.Decode(&url); err != nil {
			return fmt.Errorf("settings: value for %q: %w", city, err)
		}
		s.Set(city, url)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Store is the persistence port. Load is called at the start of every
// import run; the result is treated as immutable for the run's duration.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
