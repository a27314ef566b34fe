// Package pagination implements page-number pagination for the admin listings.
package pagination

import "gorm.io/gorm"

type Pagination struct {
	Page     int `form:"page,default=1" json:"page"`
	PageSize int `form:"page_size,default=20" json:"page_size"` // Min 1, Max 250
}

type PageInfo struct {
	NumPages int  `json:"num_pages"`
	Page     int  `json:"page"`
	Count    int  `json:"count"`
	Next     *int `json:"next"`
	Prev     *int `json:"prev"`
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 250 {
		p.PageSize = 250
	}
	return p
}

// Apply adds LIMIT/OFFSET for the requested page.
func Apply(stmt *gorm.DB, p Pagination) *gorm.DB {
	p = p.normalized()
	return stmt.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
}

// BuildPageInfo computes page navigation from a total row count.
func BuildPageInfo(count int64, p Pagination) PageInfo {
	p = p.normalized()

	numPages := int(count) / p.PageSize
	if int(count)%p.PageSize != 0 || numPages == 0 {
		numPages++
	}

	info := PageInfo{
		NumPages: numPages,
		Page:     p.Page,
		Count:    int(count),
	}
	if p.Page < numPages {
		next := p.Page + 1
		info.Next = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		info.Prev = &prev
	}
	return info
}
