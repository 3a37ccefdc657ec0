package atlas

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PackSharded splits images into contiguous chunks of ceil(n/shards), packs
// each chunk concurrently, and concatenates the resulting pages in shard
// order. Shards never share a page. If shards <= 0, runtime.NumCPU() is used.
//
// The first failing shard cancels the others and its error is returned.
func PackSharded(ctx context.Context, images []Source, pageWidth, pageHeight, shards int) ([]Page, error) {
	if err := Validate(images, pageWidth, pageHeight); err != nil {
		return nil, err
	}
	chunks := Partition(images, shards)
	if len(chunks) <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Pack(images, pageWidth, pageHeight)
	}

	results := make([][]Page, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages, err := Pack(chunk, pageWidth, pageHeight)
			if err != nil {
				return err
			}
			results[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Page
	for _, pages := range results {
		out = append(out, pages...)
	}
	return out, nil
}

// Partition splits items into at most n contiguous chunks of ceil(len/n).
// The last chunk may be shorter. If n <= 0, runtime.NumCPU() is used.
func Partition[T any](items []T, n int) [][]T {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if len(items) == 0 {
		return nil
	}
	size := (len(items) + n - 1) / n
	chunks := make([][]T, 0, n)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
