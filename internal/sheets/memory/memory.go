// Package memory is an in-memory spreadsheet fake: the test double behind
// the sheets port, and the backend for running without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"xlsimport/internal/sheets"
)

type document struct {
	sheetNames []string
	// column values served for any sheet of this document, keyed by
	// 1-based column index.
	columns map[int][]string
}

// Store records every write so tests can assert the exact cells an import
// produced.
type Store struct {
	mu   sync.Mutex
	docs map[string]*document

	// Writes keyed by "url|sheet".
	writes map[string][]sheets.CellUpdate

	// FailWith, when set for a URL, makes every operation on that
	// document fail. Tests use it to exercise per-city error isolation.
	failWith map[string]error
}

var _ sheets.Client = (*Store)(nil)

func New() *Store {
	return &Store{
		docs:     make(map[string]*document),
		writes:   make(map[string][]sheets.CellUpdate),
		failWith: make(map[string]error),
	}
}

// AddDocument registers a destination with its template sheets.
func (s *Store) AddDocument(url string, sheetNames ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[url] = &document{
		sheetNames: append([]string(nil), sheetNames...),
		columns:    make(map[int][]string),
	}
}

// SetColumn seeds the values ReadColumn returns for a document.
func (s *Store) SetColumn(url string, column int, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[url]; ok {
		doc.columns[column] = append([]string(nil), values...)
	}
}

// FailWith makes all operations on url return err.
func (s *Store) FailWith(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith[url] = err
}

// Writes returns the updates applied to one sheet of one document.
func (s *Store) Writes(url, sheet string) []sheets.CellUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.CellUpdate(nil), s.writes[url+"|"+sheet]...)
}

func (s *Store) lookup(url string) (*document, error) {
	if err, ok := s.failWith[url]; ok && err != nil {
		return nil, err
	}
	doc, ok := s.docs[url]
	if !ok {
		return nil, fmt.Errorf("unknown spreadsheet: %s", url)
	}
	return doc, nil
}

func (s *Store) ListSheets(_ context.Context, url string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(url)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), doc.sheetNames...), nil
}

func (s *Store) CreateOrReplaceSheet(_ context.Context, url, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(url)
	if err != nil {
		return err
	}
	if len(doc.sheetNames) == 0 {
		return fmt.Errorf("spreadsheet %s has no template sheet", url)
	}
	// Replace semantics: drop a same-named sheet, then append the clone.
	kept := doc.sheetNames[:0]
	for _, n := range doc.sheetNames {
		if n != name {
			kept = append(kept, n)
		}
	}
	doc.sheetNames = append(kept, name)
	delete(s.writes, url+"|"+name)
	return nil
}

func (s *Store) ReadColumn(_ context.Context, url, sheet string, column int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(url)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), doc.columns[column]...), nil
}

func (s *Store) BatchWrite(_ context.Context, url, sheet string, updates []sheets.CellUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(url); err != nil {
		return err
	}
	key := url + "|" + sheet
	s.writes[key] = append(s.writes[key], updates...)
	return nil
}

// Provider satisfies sheets.ClientProvider around a fixed Store.
type Provider struct {
	Store *Store
}

var _ sheets.ClientProvider = (*Provider)(nil)

func (p *Provider) Get(context.Context) (sheets.Client, error) { return p.Store, nil }
func (p *Provider) Invalidate()                                {}
