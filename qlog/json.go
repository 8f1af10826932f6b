package qlog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func marshalUintPair(a, b uint64) ([]byte, error) {
	return json.Marshal([2]uint64{a, b})
}

// unmarshalUintPair decodes a one- or two-element array of unsigned
// integers. A single element stands for a range of length one.
func unmarshalUintPair(b []byte, lo, hi *uint64) error {
	var vals []uint64
	if err := json.Unmarshal(b, &vals); err != nil {
		return err
	}
	switch len(vals) {
	case 1:
		*lo, *hi = vals[0], vals[0]
	case 2:
		*lo, *hi = vals[0], vals[1]
	default:
		return fmt.Errorf("qlog: range must have 1 or 2 elements, has %d", len(vals))
	}
	return nil
}

// unmarshalErrorCode decodes an error code that may appear either as its
// symbolic name, as the hex-tagged fallback name this package emits for
// unknown codes, or as a bare number.
func unmarshalErrorCode[K ~uint64](b []byte, names map[K]string) (uint64, error) {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		for code, name := range names {
			if name == s {
				return uint64(code), nil
			}
		}
		if i := strings.LastIndex(s, "_0x"); i >= 0 {
			return strconv.ParseUint(s[i+3:], 16, 64)
		}
		return 0, fmt.Errorf("qlog: unknown error code %q", s)
	}
	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		return 0, err
	}
	return v, nil
}
