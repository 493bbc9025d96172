package netx

import (
	"testing"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{name: "empty is unset", in: "", want: ""},
		{name: "blank is unset", in: "   ", want: ""},
		{name: "http", in: "http://example.com/my-checker", want: "http://example.com/my-checker"},
		{name: "https", in: "https://example.com", want: "https://example.com"},
		{name: "trimmed", in: " http://example.com/my-checker ", want: "http://example.com/my-checker"},
		{name: "upper case scheme", in: "HTTP://example.com", want: "HTTP://example.com"},
		{name: "ftp rejected", in: "ftp://example.com/my-checker",
			wantErr: "only http/https URLs supported: ftp://example.com/my-checker"},
		{name: "relative rejected", in: "example.com/foo", wantErr: "only http/https URLs supported: example.com/foo"},
		{name: "missing host", in: "http://", wantErr: "only http/https URLs supported: http://"},
		{name: "unparsable", in: "http://[::1", wantErr: "only http/https URLs supported: http://[::1"},
		{name: "NUL rejected", in: "https://example.com/a\x00", wantErr: "only http/https URLs supported: https://example.com/a\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanURL(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanURL_Idempotent(t *testing.T) {
	for _, in := range []string{"", " ", " https://example.com/a ", "http://x.org"} {
		once, err := CleanURL(in)
		require.NoError(t, err)
		twice, err := CleanURL(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}
