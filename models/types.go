package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IntSlice is a custom type for handling JSON arrays of integers in database
type IntSlice []int

// Value implements driver.Valuer interface for database storage
func (is IntSlice) Value() (driver.Value, error) {
	if is == nil {
		return nil, nil
	}
	return json.Marshal(is)
}

// Scan implements sql.Scanner interface for database retrieval
func (is *IntSlice) Scan(value interface{}) error {
	if value == nil {
		*is = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, is)
	case string:
		return json.Unmarshal([]byte(v), is)
	default:
		return fmt.Errorf("cannot scan %T into IntSlice", value)
	}
}

// GormDataType returns the data type for GORM
func (IntSlice) GormDataType() string {
	return "json"
}

// MarshalJSON implements json.Marshaler interface
func (is IntSlice) MarshalJSON() ([]byte, error) {
	if is == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(is))
}

// StringSlice is a custom type for handling JSON arrays of strings in database
type StringSlice []string

// Value implements driver.Valuer interface for database storage
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}

// Scan implements sql.Scanner interface for database retrieval
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// GormDataType returns the data type for GORM
func (StringSlice) GormDataType() string {
	return "json"
}

// JSONData is a custom type for arbitrary JSON objects (topo path geometry etc.)
type JSONData map[string]interface{}

func (j JSONData) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONData) Scan(value interface{}) error {
	if value == nil {
		*j = JSONData{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONData", value)
	}
}

// GormDataType returns the data type for GORM
func (JSONData) GormDataType() string {
	return "json"
}
