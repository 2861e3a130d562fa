// Package transform turns a downloaded photo into a catalogue image.
//
// The pipeline is: decode (JPEG, PNG, GIF, BMP, TIFF or WebP), drop
// transparency, shrink to fit a bounding box with a Lanczos filter, and
// encode as JPEG. Images are never enlarged.
//
// Two resampling engines are available: "imaging" uses
// disintegration/imaging and "nfnt" uses nfnt/resize. Both preserve the
// aspect ratio.
package transform
