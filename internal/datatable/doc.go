// Package datatable turns list-view requests into normalized result sets.
//
// A [DataQuery] (paging, sort, search and typed custom filters) is handed to
// a [Table], which resolves the default sort, asks its [RowSource] for the
// matching records, maps them through the table's [Column] set and decorates
// the [DataResults] with the page-size list, attributes and parameters.
//
// # Columns
//
// Columns are declared in one JSON file per table and built once per table
// instance:
//
//	[
//	    {"field": "id", "title": "calculation.fields.id", "fieldFormatter": "formatId", "default": true, "order": "desc"},
//	    {"field": "state.code", "alias": "state", "title": "calculation.fields.state"}
//	]
//
// A terminal, non-sortable and non-searchable "action" column is appended to
// every table. Unknown formatter names, malformed files and empty
// definitions are configuration errors reported when the table is created.
//
// # Row sources
//
// The table does not know where records come from. The sources shipped here
// cover relational entities ([EntitySource], optionally narrowed by
// [WithChoiceFilter] / [WithCategoryFilter]) and fully materialized report
// arrays ([ArraySource]). File- and index-backed sources live with the
// concrete tables that use them.
//
// # Callback requests
//
// A callback request is a partial refresh: the caller already has the
// columns and attributes, so only rows, counts and parameters are returned.
package datatable
