// Package unsplash is a small client for the Unsplash photo API.
//
// Only the random photo endpoint is used. Requests authenticate with a
// public access key sent as "Authorization: Client-ID <key>" and pin the
// API version with "Accept-Version: v1".
//
// Every failure comes back as a *errors.Error from productimg/pkg/errors
// so callers can tell network problems from bad status codes and
// malformed payloads:
//
//	client := unsplash.NewClient(accessKey, 0, log)
//	photo, err := client.RandomPhoto(ctx, "dog food")
//	if err != nil {
//	    // skip this term
//	}
//	fmt.Println(photo.URLs.Regular, photo.User.Name)
//
// The X-Ratelimit-Limit and X-Ratelimit-Remaining headers of the last
// response are available from LastRateLimit.
package unsplash
