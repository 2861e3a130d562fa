package unsplash

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the public Unsplash API root
	BaseURL = "https://api.unsplash.com"

	// RandomPhotoEndpoint returns one random photo matching a query
	RandomPhotoEndpoint = "/photos/random"

	// APIVersion is sent in the Accept-Version header
	APIVersion = "v1"

	// DefaultOrientation restricts results to landscape photos
	DefaultOrientation = "landscape"
)

// GetRandomPhotoURL builds the random photo URL for query against base
func GetRandomPhotoURL(base, query string) string {
	if base == "" {
		base = BaseURL
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", DefaultOrientation)

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(base, "/"), RandomPhotoEndpoint, params.Encode())
}

// AuthorizationHeader returns the header value for a public access key
func AuthorizationHeader(accessKey string) string {
	return "Client-ID " + accessKey
}
