package netindexer

import "testing"

func TestHeadersGetIsCaseInsensitive(t *testing.T) {
	h := Headers{{Name: "Content-Type", Value: "text/html"}}
	v, ok := h.Get("content-type")
	if !ok || v != "text/html" {
		t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", "content-type", v, ok, "text/html")
	}
}

func TestHeadersGetMissing(t *testing.T) {
	h := Headers{{Name: "Server", Value: "nginx"}}
	if _, ok := h.Get("X-Powered-By"); ok {
		t.Fatalf("Get of an absent header returned ok=true")
	}
}

func TestHeadersSetOverwritesExistingCaseInsensitively(t *testing.T) {
	h := Headers{{Name: "server", Value: "old"}}
	h.Set("Server", "new")
	if len(h) != 1 {
		t.Fatalf("Set on an existing name appended instead of overwriting: %v", h)
	}
	if v, _ := h.Get("SERVER"); v != "new" {
		t.Fatalf("Get(SERVER) = %q, want %q", v, "new")
	}
}

func TestHeadersSetAppendsNewName(t *testing.T) {
	var h Headers
	h.Set("Content-Encoding", "gzip")
	if len(h) != 1 {
		t.Fatalf("expected one header after Set on empty Headers, got %d", len(h))
	}
}

func TestFetchResultSuccessful(t *testing.T) {
	ok := FetchResult{HTTPCode: 200}
	if !ok.Successful() {
		t.Fatalf("a record with no Error should be Successful")
	}

	failed := FetchResult{Error: "(network - timeout)"}
	if failed.Successful() {
		t.Fatalf("a record with a non-empty Error should not be Successful")
	}
}
