package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringPtr(t *testing.T) {
	got := StringPtr("")
	require.NotNil(t, got)
	assert.Equal(t, "", *got)
	assert.Equal(t, OptionalString("Jane"), StringPtr("Jane"))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString(""))
	assert.Nil(t, OptionalString("  \t"))
	got := OptionalString("Jane")
	require.NotNil(t, got)
	assert.Equal(t, "Jane", *got)
}

func TestTimePtr(t *testing.T) {
	assert.Nil(t, TimePtr(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, *TimePtr(now))
}

func TestCalculateMD5(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", CalculateMD5(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", CalculateMD5([]byte("hello")))
}

func TestToJSON(t *testing.T) {
	assert.Equal(t, "null", string(ToJSON(nil)))
	assert.JSONEq(t, `{"skills":["Go"]}`, string(ToJSON(map[string][]string{"skills": {"Go"}})))
	assert.Equal(t, "null", string(ToJSON(make(chan int))))
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, size         int
		wantOffset, wantLm int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{-2, 500, 0, MaxPageSize},
		{2, -1, DefaultPageSize, DefaultPageSize},
	}
	for _, tc := range cases {
		offset, limit := Paginate(tc.page, tc.size)
		assert.Equal(t, tc.wantOffset, offset, "page=%d size=%d", tc.page, tc.size)
		assert.Equal(t, tc.wantLm, limit, "page=%d size=%d", tc.page, tc.size)
	}
}
