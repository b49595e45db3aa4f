package assertions

import (
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/pagexpect/packages/compare"
	"github.com/abdul-hamid-achik/pagexpect/packages/imgcmp"
)

func urlMode(v any) (compare.URLMode, error) {
	switch m := v.(type) {
	case nil:
		return compare.URLDefault, nil
	case compare.URLMode:
		return m, nil
	case string:
		return compare.ParseURLMode(m)
	}
	return compare.URLDefault, fmt.Errorf("unsupported url comparison mode %v (%T)", v, v)
}

func stringMode(v any) (compare.StringMode, error) {
	switch m := v.(type) {
	case nil:
		return compare.StringUnset, nil
	case compare.StringMode:
		return m, nil
	case string:
		return compare.ParseStringMode(m)
	}
	return compare.StringUnset, fmt.Errorf("unsupported string comparison mode %v (%T)", v, v)
}

func imageMode(v any, def imgcmp.Mode) (imgcmp.Mode, error) {
	switch m := v.(type) {
	case nil:
	case imgcmp.Mode:
		if m != "" {
			return imgcmp.ParseMode(string(m))
		}
	case string:
		if m != "" {
			return imgcmp.ParseMode(m)
		}
	default:
		return "", fmt.Errorf("unsupported image comparison mode %v (%T)", v, v)
	}
	if def == "" {
		return imgcmp.ModePixel, nil
	}
	return def, nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
