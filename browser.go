package homedex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/homedex/internal/domain/search/refine"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
)

// Browser is one interactive browse session: a stateful pagination
// controller over the client's listings source. Methods are safe for
// concurrent use. Every transition returns the resulting View; on
// failure the View still reflects the session, so a UI can render state
// and error together.
type Browser struct {
	svc    *browse.Service
	client *Client
}

// View returns the current snapshot without changing anything.
func (b *Browser) View() View {
	return fromInternalView(b.svc.View())
}

// PageSize returns the session's display page size.
func (b *Browser) PageSize() int { return b.svc.PageSize() }

// Search starts a new search, dropping cached results of the previous
// one. Empty text with no filters browses the entire catalog.
func (b *Browser) Search(
	ctx context.Context, text string, filters map[string]string,
) (View, error) {
	v, err := b.svc.Search(ctx, text, filters)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("search: %w", err)
	}
	return fromInternalView(v), nil
}

// GoToPage jumps to page n of the filtered results, fetching from the
// backend when the page lies past what is cached.
func (b *Browser) GoToPage(ctx context.Context, n int) (View, error) {
	v, err := b.svc.GoToPage(ctx, n)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("go to page: %w", err)
	}
	return fromInternalView(v), nil
}

// Next advances one page.
func (b *Browser) Next(ctx context.Context) (View, error) {
	v, err := b.svc.GoToNext(ctx)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("next page: %w", err)
	}
	return fromInternalView(v), nil
}

// Previous goes back one page. On the first page it stays put.
func (b *Browser) Previous(ctx context.Context) (View, error) {
	v, err := b.svc.GoToPrevious(ctx)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("previous page: %w", err)
	}
	return fromInternalView(v), nil
}

// Refine installs a full filter set over the cached records and snaps
// back to page 1 of the narrowed list. No backend call is made.
func (b *Browser) Refine(f Filters) (View, error) {
	v, err := b.svc.SetFilters(f.Location, f.Agent, f.Bedrooms, f.ExactMatch)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("refine: %w", err)
	}
	return fromInternalView(v), nil
}

// SetLocation updates only the location filter.
func (b *Browser) SetLocation(v string) (View, error) {
	view, err := b.svc.SetLocationFilter(v)
	if err != nil {
		return fromInternalView(view), fmt.Errorf("set location: %w", err)
	}
	return fromInternalView(view), nil
}

// SetAgent updates only the agent filter.
func (b *Browser) SetAgent(v string) (View, error) {
	view, err := b.svc.SetAgentFilter(v)
	if err != nil {
		return fromInternalView(view), fmt.Errorf("set agent: %w", err)
	}
	return fromInternalView(view), nil
}

// SetBedrooms updates only the bedrooms filter; v is a bucket label
// ("1".."6", where "6" means six or more; "" for any).
func (b *Browser) SetBedrooms(v string) (View, error) {
	view, err := b.svc.SetBedroomsFilter(v)
	if err != nil {
		return fromInternalView(view), fmt.Errorf("set bedrooms: %w", err)
	}
	return fromInternalView(view), nil
}

// SetExactMatch toggles exact text matching for the location and agent
// filters.
func (b *Browser) SetExactMatch(v bool) (View, error) {
	view, err := b.svc.SetExactMatch(v)
	if err != nil {
		return fromInternalView(view), fmt.Errorf("set exact match: %w", err)
	}
	return fromInternalView(view), nil
}

// ClearFilters drops all filters and returns to page 1 of the full
// cached sequence.
func (b *Browser) ClearFilters() (View, error) {
	v, err := b.svc.ResetFilters()
	if err != nil {
		return fromInternalView(v), fmt.Errorf("clear filters: %w", err)
	}
	return fromInternalView(v), nil
}

// Retry re-runs the failed fetch after an error, staying on the page
// the user was heading to. Outside the error state it returns
// ErrRetryNotAllowed.
func (b *Browser) Retry(ctx context.Context) (View, error) {
	v, err := b.svc.Retry(ctx)
	if err != nil {
		return fromInternalView(v), fmt.Errorf("retry: %w", err)
	}
	return fromInternalView(v), nil
}

// Reset returns the session to its initial idle state, cancelling any
// background work.
func (b *Browser) Reset() View {
	return fromInternalView(b.svc.Reset())
}

// Suggest fuzzy-ranks distinct cached values of a field ("location" or
// "agent") against the input, for did-you-mean affordances.
func (b *Browser) Suggest(field, input string, limit int) ([]string, error) {
	out, err := b.svc.Suggest(field, input, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, nil
}

// Locations lists the distinct locations among the cached records in
// fetch order.
func (b *Browser) Locations() []string { return b.svc.Locations() }

// Agents lists the distinct agents among the cached records in fetch
// order.
func (b *Browser) Agents() []string { return b.svc.Agents() }

// Close ends the session and cancels its background work. The browser
// must not be used afterwards.
func (b *Browser) Close() {
	if b.client != nil {
		b.client.release(b)
	}
	b.svc.Close()
}

// BedroomBuckets lists the fixed bedroom filter labels in display
// order.
func BedroomBuckets() []string {
	return refine.BedroomBuckets()
}
