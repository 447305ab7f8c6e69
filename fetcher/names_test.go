package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader([]byte(s)), simplifiedchinese.GBK.NewEncoder()))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestLookupName(t *testing.T) {
	payload := `var hq_str_sh600000="浦发银行,10.00,10.10,9.90";`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list=sh600000" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write(gbk(t, payload))
	}))
	defer srv.Close()

	r := NewNameResolver()
	r.baseURL = srv.URL

	name, err := r.LookupName(context.Background(), "sh600000")
	if err != nil {
		t.Fatal(err)
	}
	if name != "浦发银行" {
		t.Errorf("name = %q", name)
	}
}

func TestLookupNameUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`var hq_str_sh999999="";`))
	}))
	defer srv.Close()

	r := NewNameResolver()
	r.baseURL = srv.URL

	if _, err := r.LookupName(context.Background(), "sh999999"); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestLookupNameEmptySymbol(t *testing.T) {
	r := NewNameResolver()
	if _, err := r.LookupName(context.Background(), "  "); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
}
