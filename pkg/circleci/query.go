package circleci

import (
	"net/url"
	"strconv"
)

// QueryParams represents query parameters accepted by the list endpoints.
// Construct with NewQueryParams and chain the With* builders; ToValues
// renders the wire form. Boolean and numeric zero values are omitted.
type QueryParams struct {
	// PageToken selects a v2 result page. Normally managed by the
	// pagination helpers rather than set directly.
	PageToken string
	// Branch scopes a listing to one branch.
	Branch string
	// Mine restricts a listing to entries created by the caller.
	Mine bool
	// OrgSlug selects the organization for org-wide pipeline listings.
	OrgSlug string
	// OwnerSlug selects a context owner by slug.
	OwnerSlug string
	// OwnerID selects a context owner by ID.
	OwnerID string
	// OwnerType is "organization" or "account".
	OwnerType string
	// WorkflowName scopes insights branch listings to one workflow.
	WorkflowName string
	// AllBranches widens insights queries to every branch.
	AllBranches bool
	// StartDate and EndDate bound insights queries (ISO 8601 dates).
	StartDate string
	EndDate   string
	// ReportingWindow selects an insights aggregation window, e.g.
	// "last-90-days".
	ReportingWindow string
	// Limit caps v1.1 listings.
	Limit int
	// Offset skips entries from the top of v1.1 listings.
	Offset int
	// Filter narrows v1.1 build listings by outcome.
	Filter string
	// Shallow requests the abbreviated v1.1 build payload.
	Shallow bool
	// Extra carries parameters without a dedicated field, merged verbatim.
	Extra url.Values
}

// NewQueryParams creates a new QueryParams instance.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Extra: url.Values{},
	}
}

// WithPageToken sets the page token.
func (q *QueryParams) WithPageToken(token string) *QueryParams {
	q.PageToken = token

	return q
}

// WithBranch scopes the listing to a branch.
func (q *QueryParams) WithBranch(branch string) *QueryParams {
	q.Branch = branch

	return q
}

// WithMine restricts the listing to the caller's entries.
func (q *QueryParams) WithMine(mine bool) *QueryParams {
	q.Mine = mine

	return q
}

// WithOrgSlug selects the organization for org-wide listings.
func (q *QueryParams) WithOrgSlug(slug string) *QueryParams {
	q.OrgSlug = slug

	return q
}

// WithOwnerSlug selects a context owner by slug.
func (q *QueryParams) WithOwnerSlug(slug string) *QueryParams {
	q.OwnerSlug = slug

	return q
}

// WithOwnerID selects a context owner by ID.
func (q *QueryParams) WithOwnerID(id string) *QueryParams {
	q.OwnerID = id

	return q
}

// WithOwnerType sets the owner type, "organization" or "account".
func (q *QueryParams) WithOwnerType(ownerType string) *QueryParams {
	q.OwnerType = ownerType

	return q
}

// WithWorkflowName scopes insights queries to one workflow.
func (q *QueryParams) WithWorkflowName(name string) *QueryParams {
	q.WorkflowName = name

	return q
}

// WithAllBranches widens insights queries to every branch.
func (q *QueryParams) WithAllBranches(all bool) *QueryParams {
	q.AllBranches = all

	return q
}

// WithDateRange bounds insights queries to [start, end] ISO 8601 dates.
func (q *QueryParams) WithDateRange(start, end string) *QueryParams {
	q.StartDate = start
	q.EndDate = end

	return q
}

// WithReportingWindow selects an insights aggregation window.
func (q *QueryParams) WithReportingWindow(window string) *QueryParams {
	q.ReportingWindow = window

	return q
}

// WithLimit caps v1.1 listings.
func (q *QueryParams) WithLimit(limit int) *QueryParams {
	q.Limit = limit

	return q
}

// WithOffset skips entries from the top of v1.1 listings.
func (q *QueryParams) WithOffset(offset int) *QueryParams {
	q.Offset = offset

	return q
}

// WithFilter narrows v1.1 build listings by outcome.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithShallow requests the abbreviated v1.1 build payload.
func (q *QueryParams) WithShallow(shallow bool) *QueryParams {
	q.Shallow = shallow

	return q
}

// WithParam appends values for a parameter without a dedicated field.
func (q *QueryParams) WithParam(key string, values ...string) *QueryParams {
	if q.Extra == nil {
		q.Extra = url.Values{}
	}

	q.Extra[key] = append(q.Extra[key], values...)

	return q
}

// ToValues converts QueryParams to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.PageToken != "" {
		values.Set("page-token", q.PageToken)
	}

	if q.Branch != "" {
		values.Set("branch", q.Branch)
	}

	if q.Mine {
		values.Set("mine", "true")
	}

	if q.OrgSlug != "" {
		values.Set("org-slug", q.OrgSlug)
	}

	if q.OwnerSlug != "" {
		values.Set("owner-slug", q.OwnerSlug)
	}

	if q.OwnerID != "" {
		values.Set("owner-id", q.OwnerID)
	}

	if q.OwnerType != "" {
		values.Set("owner-type", q.OwnerType)
	}

	if q.WorkflowName != "" {
		values.Set("workflow-name", q.WorkflowName)
	}

	if q.AllBranches {
		values.Set("all-branches", "true")
	}

	if q.StartDate != "" {
		values.Set("start-date", q.StartDate)
	}

	if q.EndDate != "" {
		values.Set("end-date", q.EndDate)
	}

	if q.ReportingWindow != "" {
		values.Set("reporting-window", q.ReportingWindow)
	}

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}

	if q.Shallow {
		values.Set("shallow", "true")
	}

	for key, vals := range q.Extra {
		for _, val := range vals {
			values.Add(key, val)
		}
	}

	return values
}
