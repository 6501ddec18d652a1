package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDateWindow reads the from/to query params as a required pair. The
// third return value reports whether a window was supplied at all.
func parseDateWindow(c *gin.Context) (time.Time, time.Time, bool, error) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("from and to must be provided together")
	}

	from, err := time.Parse(dateLayout, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("from must be a date in format %s", dateLayout)
	}
	to, err := time.Parse(dateLayout, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("to must be a date in format %s", dateLayout)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("to must not be before from")
	}

	// to is inclusive of the whole day
	return from, to.Add(24*time.Hour - time.Nanosecond), true, nil
}

// parseOptionalDateWindow reads from/to independently, either may be absent.
func parseOptionalDateWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("from must be a date in format %s", dateLayout)
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("to must be a date in format %s", dateLayout)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}
