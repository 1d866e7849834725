package database

import (
	"fmt"
	"time"
)

// Rows store dates and timestamps as text, but the driver materializes
// columns declared DATE/TIMESTAMP as time.Time on read. Expressions over
// those columns (MAX, date()) lose the declared type and come back as the
// stored text. Date and Timestamp are scan targets that collapse both shapes
// to one canonical string, so readers and the written key format agree.

// Date scans a DATE column into YYYY-MM-DD text.
type Date string

// Scan implements sql.Scanner.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format("2006-01-02"))
	case string:
		*d = Date(v)
	case []byte:
		*d = Date(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d Date) String() string { return string(d) }

// Timestamp scans a TIMESTAMP column into RFC3339 UTC text, the form every
// cache_expiry comparison uses.
type Timestamp string

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ""
	case time.Time:
		*t = Timestamp(v.UTC().Format(time.RFC3339))
	case string:
		*t = Timestamp(v)
	case []byte:
		*t = Timestamp(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
	return nil
}

func (t Timestamp) String() string { return string(t) }
