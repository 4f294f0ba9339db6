package datatable

import (
	"encoding/json"
	"net/http"

	"github.com/Velocidex/ordereddict"
)

// Status is the HTTP-like outcome of a query.
type Status int

const (
	StatusSuccess            Status = http.StatusOK
	StatusPreconditionFailed Status = http.StatusPreconditionFailed
)

// DataResults is the normalized response of a table query.
//
// Filtered is expected to be at most TotalNotFiltered but nothing clamps
// it.
type DataResults struct {
	// Rows holds one ordered alias -> string map per record, in column order.
	Rows             []*ordereddict.Dict
	Filtered         int
	TotalNotFiltered int
	// Columns is nil for callback requests.
	Columns    []*Column
	PageList   []int
	Attributes map[string]any
	CustomData map[string]any
	Params     map[string]any
	Status     Status
}

// NewDataResults returns empty, successful results.
func NewDataResults() *DataResults {
	return &DataResults{
		Rows:       []*ordereddict.Dict{},
		Attributes: map[string]any{},
		CustomData: map[string]any{},
		Params:     map[string]any{},
		Status:     StatusSuccess,
	}
}

// AddAttribute sets a UI attribute.
func (r *DataResults) AddAttribute(key string, value any) *DataResults {
	r.Attributes[key] = value
	return r
}

// AddCustomData sets a custom data entry.
func (r *DataResults) AddCustomData(key string, value any) *DataResults {
	r.CustomData[key] = value
	return r
}

// AddParameter sets a parameter.
func (r *DataResults) AddParameter(key string, value any) *DataResults {
	r.Params[key] = value
	return r
}

// MarshalJSON writes the payload of asynchronous refreshes: the totals and
// the rows only.
func (r *DataResults) MarshalJSON() ([]byte, error) {
	rows := r.Rows
	if rows == nil {
		rows = []*ordereddict.Dict{}
	}
	return json.Marshal(struct {
		TotalNotFiltered int                 `json:"totalNotFiltered"`
		Total            int                 `json:"total"`
		Rows             []*ordereddict.Dict `json:"rows"`
	}{
		TotalNotFiltered: r.TotalNotFiltered,
		Total:            r.Filtered,
		Rows:             rows,
	})
}

// ResultsDetail is the full serialization used for non-callback responses.
type ResultsDetail struct {
	TotalNotFiltered int                 `json:"totalNotFiltered"`
	Total            int                 `json:"total"`
	Rows             []*ordereddict.Dict `json:"rows"`
	Columns          []*Column           `json:"columns,omitempty"`
	PageList         []int               `json:"pageList"`
	Attributes       map[string]any      `json:"attributes,omitempty"`
	CustomData       map[string]any      `json:"customData,omitempty"`
	Params           map[string]any      `json:"params"`
	Status           int                 `json:"status"`
}

// Detail returns every part of the results in serializable form.
func (r *DataResults) Detail() ResultsDetail {
	rows := r.Rows
	if rows == nil {
		rows = []*ordereddict.Dict{}
	}
	return ResultsDetail{
		TotalNotFiltered: r.TotalNotFiltered,
		Total:            r.Filtered,
		Rows:             rows,
		Columns:          r.Columns,
		PageList:         r.PageList,
		Attributes:       r.Attributes,
		CustomData:       r.CustomData,
		Params:           r.Params,
		Status:           int(r.Status),
	}
}
