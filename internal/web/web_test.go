package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html": {Data: []byte("<html>index</html>")},
		"app.js":     {Data: []byte("console.log('app')")},
	}
	h := Handler(fsys)

	tests := []struct {
		path string
		want string
	}{
		{"/", "index"},
		{"/app.js", "console.log"},
		{"/some/client/route", "index"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestStatic_EmbedsFrontEnd(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		if _, err := Static().Open(name); err != nil {
			t.Errorf("Open(%q): %v", name, err)
		}
	}
}
