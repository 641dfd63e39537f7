package settings

import (
	"encoding/json"
	"testing"
)

func TestSettings_OrderPreserved(t *testing.T) {
	raw := `{"Щелково": "url3", "Балашиха": "url1", "Мытищи": "url2"}`

	s := New()
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"Щелково", "Балашиха", "Мытищи"}
	got := s.Cities()
	if len(got) != len(want) {
		t.Fatalf("cities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cities = %v, want %v (order must match the file)", got, want)
		}
	}

	if u, ok := s.URL("Балашиха"); !ok || u != "url1" {
		t.Errorf("URL(Балашиха) = (%q, %v)", u, ok)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s := New()
	s.Set("Казань", "https://docs.google.com/spreadsheets/d/abc")
	s.Set("Пушкино", "https://docs.google.com/spreadsheets/d/def")

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back := New()
	if err := json.Unmarshal(raw, back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := back.Cities()
	if len(got) != 2 || got[0] != "Казань" || got[1] != "Пушкино" {
		t.Errorf("cities after round trip = %v", got)
	}
}

func TestSettings_SetUpdatesInPlace(t *testing.T) {
	s := New()
	s.Set("Казань", "old")
	s.Set("Пушкино", "x")
	s.Set("Казань", "new")

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if got := s.Cities()[0]; got != "Казань" {
		t.Errorf("update must keep position, first city = %q", got)
	}
	if u, _ := s.URL("Казань"); u != "new" {
		t.Errorf("URL = %q, want new", u)
	}
}

func TestSettings_UnmarshalRejectsNonObject(t *testing.T) {
	s := New()
	if err := json.Unmarshal([]byte(`["a","b"]`), s); err == nil {
		t.Error("expected error for non-object settings")
	}
}
