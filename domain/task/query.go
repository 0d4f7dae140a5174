package task

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Order is the direction of a sort.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

const (
	DefaultSort  = "createdAt"
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// QueryParams selects, orders and pages a task collection.
// Empty Status, Priority and Q disable the matching filter.
type QueryParams struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Q        string   `json:"q,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Order    Order    `json:"order,omitempty"`
	Page     int      `json:"page,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Normalized fills defaults for unset or out-of-range values.
func (p QueryParams) Normalized() QueryParams {
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if p.Order != OrderAsc {
		p.Order = OrderDesc
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)
	return p
}

// Key is a canonical string form of the normalized params.
func (p QueryParams) Key() string {
	p = p.Normalized()
	return fmt.Sprintf("status=%s&priority=%s&q=%s&sort=%s&order=%s&page=%d&limit=%d",
		p.Status, p.Priority, strings.ToLower(p.Q), p.Sort, p.Order, p.Page, p.Limit)
}

// PageMeta describes where a page sits in the filtered collection.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one slice of a query result.
type Page struct {
	Data []Task   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// Query filters, sorts and paginates tasks. The input slice is not modified.
//
// Filters apply in order status, priority, then q. Sorting is stable, so
// tasks with equal keys keep their input order in both directions. A sort
// field that is not a task field leaves the filtered order unchanged.
func Query(tasks []Task, params QueryParams) ([]Task, PageMeta) {
	p := params.Normalized()

	filtered := make([]Task, 0, len(tasks))
	q := strings.ToLower(p.Q)
	for _, t := range tasks {
		if p.Status != "" && t.Status != p.Status {
			continue
		}
		if p.Priority != "" && t.Priority != p.Priority {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		filtered = append(filtered, t)
	}

	if compare := comparator(p.Sort); compare != nil {
		if p.Order == OrderDesc {
			asc := compare
			compare = func(a, b Task) int { return asc(b, a) }
		}
		slices.SortStableFunc(filtered, compare)
	}

	total := len(filtered)
	start := total
	// Compare in page units so huge page numbers cannot overflow the offset.
	if p.Page-1 < (total+p.Limit-1)/p.Limit {
		start = (p.Page - 1) * p.Limit
	}
	end := start + min(p.Limit, total-start)

	totalPages := total / p.Limit
	if total%p.Limit != 0 {
		totalPages++
	}

	return filtered[start:end:end], PageMeta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

// comparator returns the ascending ordering for a field, or nil when the
// field cannot be sorted on.
func comparator(field string) func(a, b Task) int {
	switch field {
	case "id":
		return func(a, b Task) int { return cmp.Compare(a.ID, b.ID) }
	case "title":
		return func(a, b Task) int { return strings.Compare(a.Title, b.Title) }
	case "description":
		return func(a, b Task) int { return strings.Compare(a.Description, b.Description) }
	case "status":
		return func(a, b Task) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "priority":
		return func(a, b Task) int { return strings.Compare(string(a.Priority), string(b.Priority)) }
	case "dueDate":
		return func(a, b Task) int { return a.DueDate.Compare(b.DueDate) }
	case "createdAt":
		return func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updatedAt":
		return func(a, b Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
	return nil
}

// ParseQueryParams reads query-string values through get. It never fails:
// malformed numbers and unknown orders fall back to their defaults and the
// limit is capped at MaxLimit.
func ParseQueryParams(get func(key string) string) QueryParams {
	p := QueryParams{
		Status:   Status(strings.TrimSpace(get("status"))),
		Priority: Priority(strings.TrimSpace(get("priority"))),
		Q:        get("q"),
		Sort:     strings.TrimSpace(get("sort")),
		Order:    OrderDesc,
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}
	if strings.EqualFold(strings.TrimSpace(get("order")), string(OrderAsc)) {
		p.Order = OrderAsc
	}
	if page, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && page >= 1 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(get("limit"))); err == nil && limit >= 1 {
		p.Limit = min(limit, MaxLimit)
	}
	return p.Normalized()
}
