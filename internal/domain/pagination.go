package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultOwnerPageSize = 10
	DefaultAdminPageSize = 20
	MaxPageSize          = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage parses raw query values, falling back to page 1 and defaultSize
// when a value is absent, non-numeric or not positive.
func NewPage(rawPage, rawSize string, defaultSize int) Page {
	if defaultSize < 1 {
		defaultSize = DefaultOwnerPageSize
	}
	p := Page{Number: positiveOr(rawPage, 1), Size: positiveOr(rawSize, defaultSize)}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if last := maxOffset/p.Size + 1; p.Number > last {
		p.Number = last
	}
	return p
}

// maxOffset keeps offsets inside a postgres int4 parameter.
const maxOffset = math.MaxInt32

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > maxOffset/p.Size {
		return maxOffset
	}
	return (p.Number - 1) * p.Size
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Paginate builds the pagination block for total matching rows.
func (p Page) Paginate(total int) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{Page: p.Number, Limit: p.Size, Total: total, Pages: pages}
}
