package kernel

// Page describes one slice of a listing
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Paginated is a listing slice plus its position in the full set
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"pagination"`
}

// NewPaginated builds a listing result
func NewPaginated[T any](items []T, opts PaginationOptions, total int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items: items,
		Page: Page{
			Limit:  opts.Limit,
			Offset: opts.Offset,
			Total:  total,
		},
	}
}

// HasNext returns whether more items exist past this slice
func (p Paginated[T]) HasNext() bool {
	return p.Page.Offset+len(p.Items) < p.Page.Total
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationOptions is an offset-based listing window
type PaginationOptions struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize clamps the window to sane bounds
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultPageLimit
	}
	if o.Limit > MaxPageLimit {
		o.Limit = MaxPageLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
