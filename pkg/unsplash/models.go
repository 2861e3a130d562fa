package unsplash

// Photo is the subset of the Unsplash photo object the fetcher uses
type Photo struct {
	ID             string    `json:"id"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Description    string    `json:"description"`
	AltDescription string    `json:"alt_description"`
	URLs           PhotoURLs `json:"urls"`
	Links          Links     `json:"links"`
	User           User      `json:"user"`
}

// PhotoURLs lists the pre-sized renditions of a photo
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Links holds the web and tracking links of a photo
type Links struct {
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

// User is the photographer
type User struct {
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Links    UserLinks `json:"links"`
}

// UserLinks holds the photographer's profile link
type UserLinks struct {
	HTML string `json:"html"`
}

// RateLimit is the quota reported by the last API response
type RateLimit struct {
	Limit     int
	Remaining int
	Known     bool
}

// apiErrors is the error body returned by the API
type apiErrors struct {
	Errors []string `json:"errors"`
}

// Caption returns the best available description of the photo
func (p *Photo) Caption() string {
	if p.Description != "" {
		return p.Description
	}
	return p.AltDescription
}
