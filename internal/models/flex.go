package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON number or numeric string. Set reports whether the
// field was present and non-null, so handlers can tell "missing" from zero.
type FlexInt struct {
	Value int64
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = FlexInt{}
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = FlexInt{}
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fv, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("not an integer: %s", raw)
		}
		v = int64(fv)
	}
	*f = FlexInt{Value: v, Set: true}
	return nil
}

// ParseFlexInt parses a query or form value the same way.
func ParseFlexInt(s string) FlexInt {
	var f FlexInt
	if s == "" {
		return f
	}
	if err := f.UnmarshalJSON([]byte(strconv.Quote(s))); err != nil {
		return FlexInt{}
	}
	return f
}

// FlexString decodes a JSON string or number into its text form.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
