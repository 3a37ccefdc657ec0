// Package atlas packs rectangular label bitmaps into fixed-size texture pages.
//
// # Packing
//
// [Pack] is a shelf packer. Images are placed left to right in input order
// on the current row; when an image would run past the right edge the
// cursor drops below the tallest image of the row. When an image would run
// past the bottom edge the page is closed and a fresh page is started.
// Images are never reordered, so the output is a pure function of the
// input order and the page size.
//
// An image larger than the page in either dimension can never be placed.
// Pack fails the whole call with an OVERSIZED_INPUT error in that case and
// returns no pages.
//
// # Building textures
//
// Pack only computes placements. [Build] copies pixel data into one
// *image.RGBA per page, and [Texture.Region] turns a placement into the
// normalized UV rectangle a renderer samples from.
//
// # Sharding
//
// [PackSharded] splits the input into contiguous chunks and packs them
// concurrently. Each shard produces its own pages; the page lists are
// concatenated in shard order.
package atlas
