// Package storage lays out and writes the product image tree.
//
// Every category gets its own directory under the base directory and
// every search term maps to exactly one file in it:
//
//	<base>/<category>/<term with spaces as underscores>.jpg
//
// Writes go through Manager.SaveImage, which encodes into a sibling
// ".tmp" file, syncs it and renames it into place. A failed encode or
// write never leaves a partial image behind, and a rerun simply replaces
// the previous file.
//
// Usage:
//
//	manager, err := storage.NewManager("assets/images/products", []string{"food", "toys"})
//	if err != nil {
//	    return err // directory creation failures are fatal
//	}
//	path := storage.ImagePath(manager.GetBaseDir(), "food", "dog food")
//	_, err = manager.SaveImage(path, func(w io.Writer) error {
//	    return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
//	})
package storage
