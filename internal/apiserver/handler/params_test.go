package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

// probe runs fn inside a request to target and hands back what it captured
func probe(t *testing.T, target string, fn func(c *gin.Context)) {
	t.Helper()
	w := serve(func(c *gin.Context) {
		fn(c)
		c.Status(http.StatusNoContent)
	}, target)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestDateRangeParams(t *testing.T) {
	probe(t, "/probe?start_date=2024-01-01&end_date=2024-01-31", func(c *gin.Context) {
		r, err := dateRangeParams(c)
		require.NoError(t, err)
		require.True(t, r.Complete())
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Start.UTC())
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), r.End.UTC())
	})

	probe(t, "/probe?end_date=2024-01-31", func(c *gin.Context) {
		r, err := dateRangeParams(c)
		require.NoError(t, err)
		assert.Nil(t, r.Start)
		assert.NotNil(t, r.End)
	})

	probe(t, "/probe?start_date=2024-13-01", func(c *gin.Context) {
		_, err := dateRangeParams(c)
		withCode, ok := i18n.AsErrorWithCode(err)
		require.True(t, ok)
		assert.Equal(t, "ErrInvalidDate", withCode.MessageID)
		assert.Equal(t, "start_date", withCode.Data["Field"])
	})
}

func TestCompleteDateRangeParams(t *testing.T) {
	probe(t, "/probe?start_date=2024-01-01", func(c *gin.Context) {
		_, err := completeDateRangeParams(c)
		assert.ErrorIs(t, err, i18n.ErrDateRangeRequired)
	})
	probe(t, "/probe?start_date=2024-01-01&end_date=2024-01-02", func(c *gin.Context) {
		_, err := completeDateRangeParams(c)
		assert.NoError(t, err)
	})
}

func TestDayParam(t *testing.T) {
	probe(t, "/probe", func(c *gin.Context) {
		_, err := dayParam(c)
		assert.ErrorIs(t, err, i18n.ErrDateRequired)
	})
	probe(t, "/probe?date=%202024-03-05%20", func(c *gin.Context) {
		d, err := dayParam(c)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))
	})
}

func TestLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
		fails bool
	}{
		{"", 5, false},
		{"limit=1", 1, false},
		{"limit=100", 100, false},
		{"limit=0", 0, true},
		{"limit=101", 0, true},
		{"limit=-3", 0, true},
		{"limit=ten", 0, true},
	}
	for _, tt := range tests {
		probe(t, "/probe?"+tt.query, func(c *gin.Context) {
			n, err := limitParam(c, 5)
			if tt.fails {
				assert.ErrorIs(t, err, i18n.ErrInvalidLimit, tt.query)
				return
			}
			require.NoError(t, err, tt.query)
			assert.Equal(t, tt.want, n, tt.query)
		})
	}
}
