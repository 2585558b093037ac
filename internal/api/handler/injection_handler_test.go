package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/core/domain"
)

type stubDirectory struct {
	names []string
	err   error
}

func (d *stubDirectory) FindByName(_ context.Context, name string) ([]*domain.User, error) {
	d.names = append(d.names, name)
	if d.err != nil {
		return nil, d.err
	}
	return []*domain.User{{ID: "u1", Name: name}}, nil
}

func probe(t *testing.T, dir *stubDirectory, rawQuery string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/nosql-injection?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := NewInjectionHandler(dir, zerolog.Nop()).Probe(c)
	return rec, err
}

func TestInjectionHandler_Hint(t *testing.T) {
	for _, q := range []string{"", "user="} {
		dir := &stubDirectory{}
		rec, err := probe(t, dir, q)
		if err != nil {
			t.Fatalf("handler error: %v", err)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "/nosql-injection?user=name") || !strings.Contains(body, "user[$ne]=name") {
			t.Fatalf("expected usage hint for %q:\n%s", q, body)
		}
		if len(dir.names) != 0 {
			t.Fatalf("store must not be queried")
		}
	}
}

func TestInjectionHandler_PlainLookup(t *testing.T) {
	dir := &stubDirectory{}
	rec, err := probe(t, dir, "user=bob")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Hello bob") {
		t.Fatalf("unexpected response %d:\n%s", rec.Code, rec.Body.String())
	}
	if len(dir.names) != 1 || dir.names[0] != "bob" {
		t.Fatalf("expected lookup of bob, got %v", dir.names)
	}
}

func TestInjectionHandler_RejectsStructuredInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"operator object", url.Values{"user[$ne]": {"name"}}.Encode()},
		{"raw brackets", "user[$ne]=name"},
		{"regex operator", "user[$regex]=.*"},
		{"array", "user=a&user=b"},
		{"mixed", "user=a&user[$gt]="},
		{"too long", "user=" + strings.Repeat("a", 21)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &stubDirectory{}
			rec, err := probe(t, dir, tt.query)
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !strings.Contains(rec.Body.String(), "A NoSQL injection attack was detected!!") {
				t.Fatalf("expected injection banner:\n%s", rec.Body.String())
			}
			if len(dir.names) != 0 {
				t.Fatalf("store must not be queried, got %v", dir.names)
			}
		})
	}
}

func TestInjectionHandler_StoreFailure(t *testing.T) {
	boom := errors.New("mongo down")
	_, err := probe(t, &stubDirectory{err: boom}, "user=bob")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestQueryValue(t *testing.T) {
	parse := func(raw string) (any, bool) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		return queryValue(values, "user")
	}

	if v, ok := parse("user=bob"); !ok || v != "bob" {
		t.Fatalf("expected plain string, got %v %v", v, ok)
	}
	if _, ok := parse("other=bob"); ok {
		t.Fatalf("expected absent")
	}
	if v, ok := parse("user[$ne]=x"); !ok {
		t.Fatalf("expected present")
	} else if m, isMap := v.(map[string]any); !isMap || m["$ne"] != "x" {
		t.Fatalf("expected operator object, got %#v", v)
	}
	if v, _ := parse("user=a&user=b"); len(v.([]string)) != 2 {
		t.Fatalf("expected list, got %#v", v)
	}
	if _, ok := parse("username=bob"); ok {
		t.Fatalf("similarly named parameter must be ignored")
	}
}
