// Package queryspec defines typed search and ordering descriptors for the
// admin listings. Each entity declares the columns it allows; specs are
// validated at the boundary and translated to plain WHERE/ORDER BY clauses,
// never reflected over model fields.
package queryspec

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Operator string

const (
	OpEq         Operator = "EQ"
	OpIEq        Operator = "IEQ"
	OpContains   Operator = "CONTAINS"
	OpStartsWith Operator = "STARTS_WITH"
	OpGte        Operator = "GTE"
	OpLte        Operator = "LTE"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

var (
	ErrUnknownField    = errors.New("unknown_search_field")
	ErrUnknownOperator = errors.New("unknown_search_operator")
)

type SearchItem struct {
	Field    string   `json:"field" form:"field"`
	Operator Operator `json:"operator" form:"operator"`
	Value    string   `json:"value" form:"value"`
}

type OrderBy struct {
	Field     string    `json:"field" form:"order_field"`
	Direction Direction `json:"direction" form:"order_direction"`
}

// FieldSet maps the external field names of one entity to its columns.
type FieldSet map[string]string

func (fs FieldSet) column(field string) (string, error) {
	column, ok := fs[strings.TrimSpace(field)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return column, nil
}

// ApplySearch validates the items against the field set and appends WHERE
// clauses to the statement.
func ApplySearch(stmt *gorm.DB, fs FieldSet, items []SearchItem) (*gorm.DB, error) {
	for _, item := range items {
		column, err := fs.column(item.Field)
		if err != nil {
			return nil, err
		}
		switch item.Operator {
		case OpEq:
			stmt = stmt.Where(fmt.Sprintf("%s = ?", column), item.Value)
		case OpIEq:
			stmt = stmt.Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), item.Value)
		case OpContains:
			stmt = stmt.Where(fmt.Sprintf("%s LIKE ?", column), "%"+item.Value+"%")
		case OpStartsWith:
			stmt = stmt.Where(fmt.Sprintf("%s LIKE ?", column), item.Value+"%")
		case OpGte:
			stmt = stmt.Where(fmt.Sprintf("%s >= ?", column), item.Value)
		case OpLte:
			stmt = stmt.Where(fmt.Sprintf("%s <= ?", column), item.Value)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, item.Operator)
		}
	}
	return stmt, nil
}

// ApplyOrder validates the descriptor and appends an ORDER BY clause.
func ApplyOrder(stmt *gorm.DB, fs FieldSet, orderBy *OrderBy) (*gorm.DB, error) {
	if orderBy == nil || strings.TrimSpace(orderBy.Field) == "" {
		return stmt, nil
	}
	column, err := fs.column(orderBy.Field)
	if err != nil {
		return nil, err
	}
	direction := "ASC"
	if orderBy.Direction == Desc {
		direction = "DESC"
	}
	return stmt.Order(fmt.Sprintf("%s %s", column, direction)), nil
}
