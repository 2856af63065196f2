package circleci

import (
	"context"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// PageFunc fetches one page of a token-paginated v2 listing. An empty token
// requests the first page.
type PageFunc[T any] func(ctx context.Context, pageToken string) (*ListResponse[T], error)

// OffsetPageFunc fetches one page of a page-numbered v1.1 listing. Page
// numbering starts at 1.
type OffsetPageFunc[T any] func(ctx context.Context, page, perPage int) ([]T, error)

// PageOptions controls the page-flattening helpers.
type PageOptions struct {
	// Limit caps the total number of items returned; zero returns all.
	Limit int
	// MaxPages caps the number of requests made; zero or negative removes
	// the ceiling.
	MaxPages int
}

// DefaultPageOptions returns the options used when none are given.
func DefaultPageOptions() *PageOptions {
	return &PageOptions{
		MaxPages: constants.MaxPages,
	}
}

// Pager iterates the items of a token-paginated listing, fetching pages on
// demand. It is not safe for concurrent use.
type Pager[T any] struct {
	ctx    context.Context
	fetch  PageFunc[T]
	buffer []T
	token  string
	done   bool
	err    error
}

// NewPager creates a pager over a token-paginated listing. The context is
// used for every page fetch.
func NewPager[T any](ctx context.Context, fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{
		ctx:   ctx,
		fetch: fetch,
	}
}

// HasNext reports whether another item is available, fetching the next page
// when the local buffer is exhausted. After a fetch failure it keeps
// returning true so the error surfaces from Next.
func (p *Pager[T]) HasNext() bool {
	if len(p.buffer) > 0 || p.err != nil {
		return true
	}

	if p.done {
		return false
	}

	p.fill()

	return len(p.buffer) > 0 || p.err != nil
}

// fill fetches pages until an item arrives or the listing ends. Empty pages
// carrying a continuation token are skipped.
func (p *Pager[T]) fill() {
	for len(p.buffer) == 0 && !p.done && p.err == nil {
		resp, err := p.fetch(p.ctx, p.token)
		if err != nil {
			p.err = err

			return
		}

		p.buffer = resp.Items
		p.token = resp.NextPageToken

		if p.token == "" {
			p.done = true
		}
	}
}

// Next returns the next item, or ErrNoMoreItems once the listing is
// exhausted. A page fetch failure is returned on every subsequent call.
func (p *Pager[T]) Next() (T, error) {
	var zero T

	if !p.HasNext() {
		return zero, ErrNoMoreItems
	}

	if p.err != nil {
		return zero, p.err
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]

	return item, nil
}

// All drains the pager into a slice.
func (p *Pager[T]) All() ([]T, error) {
	var results []T

	for p.HasNext() {
		item, err := p.Next()
		if err != nil {
			return nil, err
		}

		results = append(results, item)
	}

	return results, nil
}

// ForEach applies fn to every remaining item, stopping on the first error.
func (p *Pager[T]) ForEach(fn func(item T) error) error {
	for p.HasNext() {
		item, err := p.Next()
		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

// FetchAll follows next_page_token until the listing is exhausted, the item
// limit is reached, or the page ceiling is hit, and returns the flattened
// items.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], opts *PageOptions) ([]T, error) {
	if opts == nil {
		opts = DefaultPageOptions()
	}

	var results []T

	token := ""

	for page := 0; opts.MaxPages <= 0 || page < opts.MaxPages; page++ {
		resp, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}

		results = append(results, resp.Items...)

		if opts.Limit > 0 && len(results) >= opts.Limit {
			return results[:opts.Limit], nil
		}

		if resp.NextPageToken == "" {
			break
		}

		token = resp.NextPageToken
	}

	return results, nil
}

// FetchAllOffset flattens a page-numbered v1.1 listing. The per-page size is
// the limit when below the API ceiling of 100, otherwise 100. Fetching stops
// on an empty page or once limit items are collected; zero limit collects
// everything.
func FetchAllOffset[T any](ctx context.Context, fetch OffsetPageFunc[T], limit int) ([]T, error) {
	perPage := constants.MaxPerPage
	if limit > 0 && limit < constants.MaxPerPage {
		perPage = limit
	}

	var results []T

	for page := 1; ; page++ {
		items, err := fetch(ctx, page, perPage)
		if err != nil {
			return nil, err
		}

		results = append(results, items...)

		if len(items) == 0 || (limit > 0 && len(results) >= limit) {
			break
		}
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// PageResult carries one streamed page, or the error that ended the stream.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages fetches pages in a background goroutine and delivers each one
// as it arrives. The channel closes after the last page, the page ceiling,
// an error, or context cancellation.
func StreamPages[T any](ctx context.Context, fetch PageFunc[T], opts *PageOptions) <-chan PageResult[T] {
	if opts == nil {
		opts = DefaultPageOptions()
	}

	results := make(chan PageResult[T], constants.SmallBufferSize)

	go func() {
		defer close(results)

		token := ""

		for page := 0; opts.MaxPages <= 0 || page < opts.MaxPages; page++ {
			resp, err := fetch(ctx, token)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: resp.Items}:
			case <-ctx.Done():
				return
			}

			if resp.NextPageToken == "" {
				return
			}

			token = resp.NextPageToken
		}
	}()

	return results
}
