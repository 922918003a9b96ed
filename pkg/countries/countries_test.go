package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const payload = `[
  {"name":{"common":"Portugal"},"idd":{"root":"+3","suffixes":["51"]},"flag":"🇵🇹","cca2":"PT"},
  {"name":{"common":"Antarctica"},"idd":{},"flag":"🇦🇶","cca2":"AQ"},
  {"name":{"common":"Brazil"},"idd":{"root":"+5","suffixes":["5"]},"flag":"🇧🇷","cca2":"BR"},
  {"name":{"common":"Kosovo"},"idd":{"root":"+3"},"flag":"🇽🇰","cca2":"XK"}
]`

func TestFetchFiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(nil)
	c.URL = srv.URL
	got := c.Fetch(context.Background())
	if len(got) != 2 {
		t.Fatalf("countries = %+v", got)
	}
	if got[0].CCA2 != "BR" || got[1].CCA2 != "PT" {
		t.Fatalf("order = %s, %s", got[0].CCA2, got[1].CCA2)
	}
	if code := DialCode(got[1]); code != "+351" {
		t.Fatalf("DialCode = %q", code)
	}
}

func TestFetchFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(nil)
	c.URL = srv.URL
	got := c.Fetch(context.Background())
	if len(got) != 3 || got[0].CCA2 != "US" {
		t.Fatalf("fallback = %+v", got)
	}
	if DialCode(got[1]) != "+44" {
		t.Fatalf("DialCode(GB) = %q", DialCode(got[1]))
	}
}

func TestFind(t *testing.T) {
	list := Fallback()
	if c, ok := Find(list, "in"); !ok || c.Name.Common != "India" {
		t.Fatalf("Find(in) = %+v, %v", c, ok)
	}
	if c, ok := Find(list, "+44"); !ok || c.CCA2 != "GB" {
		t.Fatalf("Find(+44) = %+v, %v", c, ok)
	}
	if _, ok := Find(list, "ZZ"); ok {
		t.Fatalf("Find(ZZ) matched")
	}
}
