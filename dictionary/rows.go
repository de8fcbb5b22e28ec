package dictionary

// Row is one record of tabular import input, keyed by column name.
// A column missing from the map is a missing value.
type Row map[string]string

// FilterImportRows drops rows whose CODE or NAME cell is absent or normalizes
// to NULL, mirroring the pre-write filtering of the import pipeline.
func FilterImportRows(rows []Row) []Row {
	valid := make([]Row, 0, len(rows))

	for _, row := range rows {
		if NormalizeValue(row[AttrCode]) == nil {
			continue
		}

		if NormalizeValue(row[AttrName]) == nil {
			continue
		}

		valid = append(valid, row)
	}

	return valid
}

// HasImportColumns reports whether the declared column set carries the two
// columns every import must have.
func HasImportColumns(columns []string) bool {
	var hasCode, hasName bool

	for _, c := range columns {
		switch c {
		case AttrCode:
			hasCode = true
		case AttrName:
			hasName = true
		}
	}

	return hasCode && hasName
}
