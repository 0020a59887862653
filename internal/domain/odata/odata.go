// Package odata builds the filter and ordering expressions understood by the
// list store. Every interpolated value is escaped.
package odata

import "strings"

// EscapeString doubles single quotes so value can sit inside an OData string literal.
func EscapeString(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// Eq renders "field eq 'value'" with value escaped.
func Eq(field, value string) string {
	return field + " eq '" + EscapeString(value) + "'"
}

// Ge renders "field ge 'value'" with value escaped.
func Ge(field, value string) string {
	return field + " ge '" + EscapeString(value) + "'"
}

// FieldPath qualifies a list column for $filter and $orderby ("fields/field_4").
func FieldPath(column string) string {
	return "fields/" + column
}

// Desc renders a descending $orderby clause.
func Desc(field string) string {
	return field + " desc"
}
