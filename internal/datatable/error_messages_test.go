package datatable

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing columns maps to configuration",
			err:         fmt.Errorf("table user: %w", ErrNoColumns),
			wantCode:    "CFG001",
			wantMessage: "The table configuration is invalid",
		},
		{
			name:        "formatter wins over configuration",
			err:         fmt.Errorf("column %q: %w", "price", fmt.Errorf("%w: %q", ErrFormatterNotFound, "formatPrice")),
			wantCode:    "CFG002",
			wantMessage: "A column references an unknown formatter",
		},
		{
			name:        "unknown table",
			err:         fmt.Errorf("%w: bogus", ErrUnknownTable),
			wantCode:    "TBL001",
			wantMessage: "The specified table does not exist",
		},
		{
			name:        "invalid query",
			err:         fmt.Errorf("%w: offset (-1) must be non-negative", ErrInvalidQuery),
			wantCode:    "QRY001",
			wantMessage: "The request parameters are invalid",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "connection reset maps correctly",
			err:         errors.New("read: connection reset by peer"),
			wantCode:    "DB005",
			wantMessage: "Database connection was interrupted",
		},
		{
			name:        "deadline maps to timeout",
			err:         errors.New("fetch: context deadline exceeded"),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("ERROR: DEADLOCK detected (SQLSTATE 40P01)"),
			wantCode:    "DB007",
			wantMessage: "Database was busy with conflicting operations",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrUnknownTable)
	want := "The specified table does not exist (Code: TBL001). Verify the table name is correct"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{ErrInvalidQuery, true},
		{errors.New("i/o timeout"), true},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
