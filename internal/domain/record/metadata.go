package record

import (
	"database/sql/driver"
	"encoding/json"

	"hermes/pkg/errors"
)

// Metadata stores the original CSV column values as a JSONB column
type Metadata map[string]string

// Value implements driver.Valuer for sqlx inserts
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for sqlx selects
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Newf("unsupported metadata scan type %T", src)
	}

	return json.Unmarshal(data, m)
}
