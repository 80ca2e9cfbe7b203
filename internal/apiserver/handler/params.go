package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/analytics"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

const (
	paramStartDate = "start_date"
	paramEndDate   = "end_date"
	paramDate      = "date"
	paramLimit     = "limit"

	minLimit = 1
	maxLimit = 100
)

// dateParam parses an optional date query parameter
func dateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := analytics.ParseDate(raw)
	if err != nil {
		return nil, i18n.ErrInvalidDate.WithParam("Field", name)
	}
	return &d, nil
}

// dateRangeParams reads start_date and end_date; either may be absent
func dateRangeParams(c *gin.Context) (analytics.DateRange, error) {
	start, err := dateParam(c, paramStartDate)
	if err != nil {
		return analytics.DateRange{}, err
	}
	end, err := dateParam(c, paramEndDate)
	if err != nil {
		return analytics.DateRange{}, err
	}
	return analytics.DateRange{Start: start, End: end}, nil
}

// completeDateRangeParams reads a date range where both ends are required
func completeDateRangeParams(c *gin.Context) (analytics.DateRange, error) {
	r, err := dateRangeParams(c)
	if err != nil {
		return r, err
	}
	if !r.Complete() {
		return r, i18n.ErrDateRangeRequired
	}
	return r, nil
}

// dayParam reads the required date parameter of the daily endpoints
func dayParam(c *gin.Context) (time.Time, error) {
	d, err := dateParam(c, paramDate)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, i18n.ErrDateRequired
	}
	return *d, nil
}

// limitParam reads limit, falling back to def when absent
func limitParam(c *gin.Context, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(paramLimit))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minLimit || n > maxLimit {
		return 0, i18n.ErrInvalidLimit.WithParam("Min", minLimit).WithParam("Max", maxLimit)
	}
	return n, nil
}
