package posts

import (
	"errors"
	"testing"
	"time"
)

func TestParseObjectID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "65f1c2a4b9e3d1a2c3b4d5e6", false},
		{"upper case", "65F1C2A4B9E3D1A2C3B4D5E6", false},
		{"not hex", "not-an-object-id-at-all!", true},
		{"too short", "65f1c2a4", true},
		{"too long", "65f1c2a4b9e3d1a2c3b4d5e6ff", true},
		{"empty", "", true},
		{"uuid", "0b6c7e0e-6a43-4f5a-9a53-6d0f0d3c8f11", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseObjectID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("parseObjectID(%q) err = %v, want ErrInvalidID", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Errorf("parseObjectID(%q): %v", tt.id, err)
			}
		})
	}
}

func TestMongoRepository_CanonicalID(t *testing.T) {
	r := &MongoRepository{}
	got, err := r.CanonicalID("65F1C2A4B9E3D1A2C3B4D5E6")
	if err != nil {
		t.Fatalf("CanonicalID: %v", err)
	}
	if got != "65f1c2a4b9e3d1a2c3b4d5e6" {
		t.Errorf("CanonicalID = %q", got)
	}
	if _, err := r.CanonicalID("xyz"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("got err %v", err)
	}
}

func TestMongoClientOptions(t *testing.T) {
	tests := []struct {
		uri           string
		wantSelection time.Duration
	}{
		{"mongodb://localhost:27017/blogdb", 5 * time.Second},
		{"mongodb://127.0.0.1:27017", 5 * time.Second},
		{"mongodb://db.internal:27017/blogdb", 50 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			opts := MongoClientOptions(tt.uri)
			if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != tt.wantSelection {
				t.Errorf("ServerSelectionTimeout = %v, want %v", opts.ServerSelectionTimeout, tt.wantSelection)
			}
			if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 10 {
				t.Errorf("MaxPoolSize = %v", opts.MaxPoolSize)
			}
			if opts.SocketTimeout == nil || *opts.SocketTimeout != 45*time.Second {
				t.Errorf("SocketTimeout = %v", opts.SocketTimeout)
			}
		})
	}
}

func TestMongoDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/posts", "posts"},
		{"mongodb://user:pw@db:27017/blog?authSource=admin", "blog"},
		{"mongodb://localhost:27017", "blogdb"},
		{"mongodb://localhost:27017/", "blogdb"},
		{"::not a uri::", "blogdb"},
	}
	for _, tt := range tests {
		if got := MongoDatabaseName(tt.uri); got != tt.want {
			t.Errorf("MongoDatabaseName(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
