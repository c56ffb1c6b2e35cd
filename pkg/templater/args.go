package templater

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// ParseMetadataArgs parses command line metadata arguments of the form
// `key=value` into a metadata map. Values parse as int, then float, and
// otherwise stay strings. Nested keys use dot notation and are kept as-is.
func ParseMetadataArgs(args []string) (map[string]interface{}, error) {
	if len(args) == 0 {
		return nil, nil
	}
	metadata := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata argument %q (expected key=value)", arg)
		}
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			metadata[key] = i
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			metadata[key] = f
		} else {
			metadata[key] = value
		}
	}
	return metadata, nil
}

// ParseColumnSelectionArgs parses command line column selection arguments.
// All-integer arguments select by 0-based index, all column labels (A, B,
// AA) convert to 0-based indices, and anything else is read as header label
// paths split on commas, which must all have the same depth.
func ParseColumnSelectionArgs(args []string) (models.ColumnSelection, error) {
	if len(args) == 0 {
		return models.ColumnSelection{}, ErrEmptySelection
	}

	indices := make([]int, 0, len(args))
	allInts := true
	for _, arg := range args {
		i, err := strconv.Atoi(arg)
		if err != nil {
			allInts = false
			break
		}
		indices = append(indices, i)
	}
	if allInts {
		return models.ColumnSelection{Indices: indices}, nil
	}

	indices = indices[:0]
	allLabels := true
	for _, arg := range args {
		n, err := excelize.ColumnNameToNumber(arg)
		if err != nil {
			allLabels = false
			break
		}
		indices = append(indices, n-1)
	}
	if allLabels {
		return models.ColumnSelection{Indices: indices}, nil
	}

	headers := make([][]string, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		headers = append(headers, parts)
	}
	depth := len(headers[0])
	for _, path := range headers {
		if len(path) != depth {
			return models.ColumnSelection{}, fmt.Errorf("header paths have unequal depth")
		}
	}
	return models.ColumnSelection{Headers: headers}, nil
}
