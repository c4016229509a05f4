package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Period decides what "the current month" means for budget totals and the
// default listing scope.
type Period struct {
	// YearScoped limits the current month to the current year. When false the
	// month number matches in any year.
	YearScoped bool
	// Now returns the reference time. Defaults to time.Now.
	Now func() time.Time
	// Location is the zone for timestamps shown to users. Defaults to
	// time.Local.
	Location *time.Location
}

func (p Period) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

// Reference returns the reference time in UTC.
func (p Period) Reference() time.Time {
	return p.now()
}

// LocalNow returns the reference time in the display location.
func (p Period) LocalNow() time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	return p.now().In(loc)
}

// CurrentMonth returns a GORM scope restricting column to the current month.
func (p Period) CurrentMonth(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		now := p.now()
		if p.YearScoped {
			start, end := monthRange(now.Year(), now.Month())
			return db.Where(column+" >= ? AND "+column+" < ?", start, end)
		}
		return db.Where(monthExpr(db, column)+" = ?", int(now.Month()))
	}
}

// monthRange returns [first day of month, first day of next month) in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// yearRange returns [Jan 1 of year, Jan 1 of next year) in UTC.
func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// monthExpr returns a dialect-specific integer month-of-year expression.
func monthExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%m', substr(%s, 1, 10)) AS INTEGER)", column)
	}
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s AT TIME ZONE 'UTC') AS INTEGER)", column)
}
