package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limit sentinel",
			err:  fmt.Errorf("%w: slow down", ErrSheetsRateLimit),
			want: true,
		},
		{
			name: "connection sentinel",
			err:  fmt.Errorf("%w: dial tcp", ErrSheetsConnection),
			want: true,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "retryable wrapper marked retryable",
			err:  &RetryableError{Err: errors.New("transient"), Retryable: true},
			want: true,
		},
		{
			name: "retryable wrapper marked permanent",
			err:  &RetryableError{Err: errors.New("bad request"), Retryable: false},
			want: false,
		},
		{
			name: "unclassified error",
			err:  errors.New("something else"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	cause := fmt.Errorf("%w: sheets.spreadsheet_id", ErrMissingConfig)
	err := NewUserError("Add a spreadsheet ID to your config file.", cause)

	assert.Contains(t, err.Error(), "Add a spreadsheet ID to your config file.")
	assert.Contains(t, err.Error(), "sheets.spreadsheet_id")
	assert.True(t, errors.Is(err, ErrMissingConfig))

	bare := NewUserError("Nothing else to report.", nil)
	assert.Equal(t, "Nothing else to report.", bare.Error())
}
