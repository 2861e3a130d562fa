package unsplash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomPhotoURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		query    string
		expected string
	}{
		{
			name:     "default base",
			query:    "dog food",
			expected: "https://api.unsplash.com/photos/random?orientation=landscape&query=dog+food",
		},
		{
			name:     "custom base with trailing slash",
			base:     "http://127.0.0.1:8080/",
			query:    "collar",
			expected: "http://127.0.0.1:8080/photos/random?orientation=landscape&query=collar",
		},
		{
			name:     "query escaping",
			query:    "cat & dog",
			expected: "https://api.unsplash.com/photos/random?orientation=landscape&query=cat+%26+dog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRandomPhotoURL(tt.base, tt.query))
		})
	}
}

func TestAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Client-ID abc", AuthorizationHeader("abc"))
}
