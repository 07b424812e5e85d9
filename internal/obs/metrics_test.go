package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                               "/",
		"/metrics":                       "/metrics",
		"/v1/parks":                      "/v1/parks",
		"/v1/parks/abc":                  "/v1/parks/:id",
		"/v1/parks/abc/ratings":          "/v1/parks/:id/ratings",
		"/v1/parks/abc/ratings?limit=1":  "/v1/parks/:id/ratings",
		"/v1/me/favorites/abc/toggle":    "/v1/me/favorites/:id/toggle",
		"/v1/me/connections":             "/v1/me/connections",
		"/v1/parks/abc/photos/overview":  "/v1/parks/abc/photos/overview",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
