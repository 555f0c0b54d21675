// ABOUTME: Shared table view model for paginated, sortable console tables
// ABOUTME: Parses page/limit/sort params and builds pager and header links

package webadmin

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/2389/bloodlink-console/internal/api"
)

// Empty-state messages shown when a table has no rows.
const (
	emptyCampaigns = "No campaigns found."
	emptyDonations = "No donation requests found."
	emptyUnits     = "No blood units found."
	emptyActions   = "No actions found."
)

// tableState is what the browser asked for: page, size and sort order.
type tableState struct {
	Page  int // one-based, as sent to the backend
	Limit int
	Sort  string
	Desc  bool
}

func parseTableState(r *http.Request) tableState {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	p := api.ListParams{Page: page, Limit: limit}.Normalize()
	return tableState{
		Page:  p.Page,
		Limit: p.Limit,
		Sort:  q.Get("sort"),
		Desc:  q.Get("dir") == "desc",
	}
}

func (s tableState) params() api.ListParams {
	return api.ListParams{Page: s.Page, Limit: s.Limit}
}

// column is one table header.
type column struct {
	Key      string
	Label    string
	Sortable bool
}

// headerCell is a column rendered for the current sort state.
type headerCell struct {
	Label    string
	Sortable bool
	SortURL  string
	Active   bool
	Desc     bool
}

// tableView is everything the shared table templates need.
type tableView struct {
	ID       string // element id the table replaces
	Endpoint string
	Trigger  string // event that makes the table re-fetch
	Columns  []column
	Filters  url.Values
	State    tableState

	// Index is the zero-based page index.
	Index      int
	TotalPages int
	Total      int

	Empty string
	Error string
}

func newTableView(id, endpoint, resource, empty string, columns []column, state tableState, filters url.Values) tableView {
	return tableView{
		ID:       id,
		Endpoint: endpoint,
		Trigger:  resource + "-changed",
		Columns:  columns,
		Filters:  filters,
		State:    state,
		Index:    state.Page - 1,
		Empty:    empty,
	}
}

// withMeta fills paging from the backend's meta block.
func (t tableView) withMeta(m api.Meta) tableView {
	t.TotalPages = m.TotalPages
	t.Total = m.Total
	return t
}

// withError marks the table as failed with the backend's message.
func (t tableView) withError(err error) tableView {
	t.Error = api.Message(err)
	return t
}

// CanPrevious reports whether first/previous are enabled.
func (t tableView) CanPrevious() bool {
	return t.Index > 0
}

// CanNext reports whether next/last are enabled. They are disabled on or
// past the last page and when there are no pages at all.
func (t tableView) CanNext() bool {
	return t.Index < t.TotalPages-1
}

// PageNumber is the one-based page shown to the user.
func (t tableView) PageNumber() int {
	return t.Index + 1
}

func (t tableView) link(page int, sortKey string, desc bool) string {
	v := url.Values{}
	for k, vals := range t.Filters {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(t.State.Limit))
	if sortKey != "" {
		v.Set("sort", sortKey)
		if desc {
			v.Set("dir", "desc")
		} else {
			v.Set("dir", "asc")
		}
	}
	return t.Endpoint + "?" + v.Encode()
}

// CurrentURL reloads the table as it is now.
func (t tableView) CurrentURL() string {
	return t.link(t.State.Page, t.State.Sort, t.State.Desc)
}

// FirstURL, PreviousURL, NextURL and LastURL keep the current sort.
func (t tableView) FirstURL() string {
	return t.link(1, t.State.Sort, t.State.Desc)
}

func (t tableView) PreviousURL() string {
	return t.link(max(t.State.Page-1, 1), t.State.Sort, t.State.Desc)
}

func (t tableView) NextURL() string {
	return t.link(t.State.Page+1, t.State.Sort, t.State.Desc)
}

func (t tableView) LastURL() string {
	return t.link(max(t.TotalPages, 1), t.State.Sort, t.State.Desc)
}

// Headers renders the columns. Clicking the active column flips direction.
func (t tableView) Headers() []headerCell {
	cells := make([]headerCell, 0, len(t.Columns))
	for _, col := range t.Columns {
		cell := headerCell{Label: col.Label, Sortable: col.Sortable}
		if col.Sortable {
			cell.Active = t.State.Sort == col.Key
			cell.Desc = cell.Active && t.State.Desc
			cell.SortURL = t.link(t.State.Page, col.Key, cell.Active && !t.State.Desc)
		}
		cells = append(cells, cell)
	}
	return cells
}

// sorter maps a column key to a row comparison.
type sorter[T any] map[string]func(a, b T) int

// sortRows orders one fetched page in place. Unknown keys leave backend order.
func sortRows[T any](rows []T, by sorter[T], s tableState) {
	cmp, ok := by[s.Sort]
	if !ok {
		return
	}
	if s.Desc {
		asc := cmp
		cmp = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(rows, cmp)
}
