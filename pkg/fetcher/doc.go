// Package fetcher runs the product image loop.
//
// For every category of the configured table, in order, and every search
// term of that category, in order, the fetcher asks the photo source for
// a random landscape photo, hands its URL to the download pipeline, and
// then waits the configured delay before the next term. A term that
// yields nothing is logged and skipped; the loop never stops early on
// its own.
//
//	f, err := fetcher.New(cfg)
//	summary, err := f.Run(ctx)
//	fmt.Println(summary.Saved, summary.Skipped, summary.Failed)
//
// Only a failure to create the output directories is returned as an
// error. Cancelling ctx ends the loop before the next term.
package fetcher
