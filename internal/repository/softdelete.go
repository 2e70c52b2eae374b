package repository

import "time"

// The original store could not express "field is null OR unset" in one native
// operator, so every not-deleted query ORed an isSet:false check with an
// explicit null check. These helpers keep that contract in one place: the
// clause form is appended to SQL, the predicate form screens loaded rows.

// SoftDeleteClause is the not-deleted predicate for soft-deleted tables.
const SoftDeleteClause = "deleted_at IS NULL"

// WithSoftDelete merges the not-deleted condition into a filter map without
// clobbering caller-supplied conditions.
func WithSoftDelete(filters map[string]interface{}) map[string]interface{} {
	if filters == nil {
		filters = make(map[string]interface{})
	}
	filters["deleted_at"] = nil
	return filters
}

// NotDeleted reports whether a row-level deleted_at value passes the
// soft-delete filter. A missing field and an explicit null both pass; any
// set timestamp fails.
func NotDeleted(rec map[string]interface{}) bool {
	v, ok := rec["deleted_at"]
	if !ok || v == nil {
		return true
	}
	if t, ok := v.(*time.Time); ok {
		return t == nil
	}
	if _, ok := v.(time.Time); ok {
		return false
	}
	return false
}
