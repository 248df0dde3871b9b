package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name, prefix, owner, file, want string
	}{
		{"plain", "restaurants", "abc", "front.jpg", "restaurants/abc_front.jpg"},
		{"strips directories", "profiles", "u1", "../../etc/passwd", "profiles/u1_passwd"},
		{"strips windows directories", "profiles", "u1", `C:\pics\me.png`, "profiles/u1_me.png"},
		{"empty name", "profiles", "u1", "", "profiles/u1_upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.owner, tt.file))
		})
	}
}

func TestObjectURL_EscapesSegments(t *testing.T) {
	s := &MediaStore{baseURL: "http://localhost:9000/restaurant-media"}

	got := s.ObjectURL("restaurants/abc_front door.jpg")

	assert.Equal(t, "http://localhost:9000/restaurant-media/restaurants/abc_front%20door.jpg", got)
}
