package pathutil

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/fetch-url", "/fetch-url"},
		{"/api/fetch-url", "/api/fetch-url"},
		{"/fetch-url/", "/fetch-url"},
		{"/health?verbose=1", "/health"},
		{"/metrics", "/metrics"},
		{"/", OtherRoute},
		{"/wp-login.php", OtherRoute},
		{"/fetch-url/extra", OtherRoute},
		{"", OtherRoute},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCardinality(t *testing.T) {
	seen := map[string]struct{}{}
	for _, p := range []string{"/fetch-url", "/api/fetch-url", "/health", "/live", "/metrics", "/a", "/b", "/c"} {
		seen[NormalizePath(p)] = struct{}{}
	}
	if len(seen) != Cardinality() {
		t.Errorf("distinct labels = %d, want %d", len(seen), Cardinality())
	}
}
