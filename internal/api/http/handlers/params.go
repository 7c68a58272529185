package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-order-metrics/internal/auth"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

const dateLayout = "2006-01-02"

// DateParser reads calendar dates from query strings in the analytics time zone.
type DateParser struct {
	loc *time.Location
}

// NewDateParser constructs a parser. A nil location means UTC.
func NewDateParser(loc *time.Location) *DateParser {
	if loc == nil {
		loc = time.UTC
	}
	return &DateParser{loc: loc}
}

// Location returns the zone dates are interpreted in.
func (p *DateParser) Location() *time.Location {
	return p.loc
}

// Period reads the from/to query parameters. Both are whole days and inclusive, so
// to=2024-03-31 ends at midnight of April 1st.
func (p *DateParser) Period(c *fiber.Ctx) (service.Period, error) {
	var period service.Period
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, p.loc)
		if err != nil {
			return period, fiber.NewError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		period.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, p.loc)
		if err != nil {
			return period, fiber.NewError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		end := to.AddDate(0, 0, 1)
		period.To = &end
	}
	return period, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func actorID(c *fiber.Ctx) string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Analyst == nil {
		return ""
	}
	return principal.Analyst.ID
}
