package tabular

import (
	"fmt"
	"os"

	"creditrisk/internal/errors"

	"github.com/tidwall/gjson"
)

// readJSONRows reads an array of flat JSON objects, located at
// config.RecordsPath or at the document root, into string rows. The header
// is the union of keys in first-seen order; absent keys and nulls become
// empty cells. A single object is read as one record.
func (r *Reader) readJSONRows(path string) ([][]string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read JSON file %s", path), err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.IOError(fmt.Sprintf("%s is not valid JSON", path), nil)
	}

	data := gjson.ParseBytes(body)
	if r.config.RecordsPath != "" {
		data = gjson.GetBytes(body, r.config.RecordsPath)
		if !data.Exists() {
			return nil, errors.IOError(fmt.Sprintf("records path %q not found in %s", r.config.RecordsPath, path), nil)
		}
	}

	var records []gjson.Result
	switch {
	case data.IsArray():
		records = data.Array()
	case data.IsObject():
		records = []gjson.Result{data}
	default:
		return nil, errors.IOError("JSON records must be an array of objects", nil)
	}

	var header []string
	index := map[string]int{}
	cells := make([]map[string]string, len(records))
	for i, rec := range records {
		if !rec.IsObject() {
			return nil, errors.IOError(fmt.Sprintf("record %d is not an object", i+1), nil)
		}
		row := map[string]string{}
		var cellErr error
		rec.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, seen := index[name]; !seen {
				index[name] = len(header)
				header = append(header, name)
			}
			switch value.Type {
			case gjson.Null:
				row[name] = ""
			case gjson.String:
				row[name] = value.Str
			case gjson.Number, gjson.True, gjson.False:
				row[name] = value.Raw
			default:
				cellErr = errors.IOError(fmt.Sprintf("record %d field %q is nested", i+1, name), nil)
				return false
			}
			return true
		})
		if cellErr != nil {
			return nil, cellErr
		}
		cells[i] = row
	}

	if header == nil {
		return nil, errors.IOError("JSON document has no records", nil)
	}
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, row := range cells {
		out := make([]string, len(header))
		for j, name := range header {
			out[j] = row[name]
		}
		rows = append(rows, out)
	}
	return rows, nil
}
