package server

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/pkg/db/queryspec"
)

const dateOnlyLayout = "2006-01-02"

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid_id")
	}
	return parsed, nil
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := parseSnowflakeID(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateOnlyLayout, strings.TrimSpace(value))
}

func parseOptionalTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := parseDate(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseSearchItems reads the repeated search triple from the query string:
// ?search_field=status&search_operator=EQ&search_value=VALID.
func parseSearchItems(fields, operators, values []string) ([]queryspec.SearchItem, error) {
	if len(fields) != len(operators) || len(fields) != len(values) {
		return nil, errors.New("mismatched_search_parameters")
	}
	items := make([]queryspec.SearchItem, 0, len(fields))
	for i := range fields {
		items = append(items, queryspec.SearchItem{
			Field:    fields[i],
			Operator: queryspec.Operator(strings.ToUpper(strings.TrimSpace(operators[i]))),
			Value:    values[i],
		})
	}
	return items, nil
}

func parseOrderBy(field, direction string) *queryspec.OrderBy {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	dir := queryspec.Asc
	if strings.EqualFold(strings.TrimSpace(direction), "DESC") {
		dir = queryspec.Desc
	}
	return &queryspec.OrderBy{Field: field, Direction: dir}
}
