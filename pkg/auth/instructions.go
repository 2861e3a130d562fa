package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAccessKeyGuide explains how to obtain an Unsplash access key
func ShowAccessKeyGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "UNSPLASH ACCESS KEY")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "productimg needs a free Unsplash API access key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Sign in at https://unsplash.com/developers")
	fmt.Fprintln(w, "2. Open 'Your apps' and create a new application")
	fmt.Fprintln(w, "3. Copy the 'Access Key' (not the secret key)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then provide it in one of these ways:")
	fmt.Fprintln(w, "   productimg auth login              (stored in the keychain)")
	fmt.Fprintln(w, "   export PRODUCTIMG_ACCESS_KEY=...   (or UNSPLASH_ACCESS_KEY)")
	fmt.Fprintln(w, "   unsplash.access_key in .productimg.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Demo applications are limited to 50 requests per hour.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
