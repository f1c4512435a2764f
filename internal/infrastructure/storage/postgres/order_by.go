package postgres

import "strings"

// orderByOrDefault validates a user-supplied ORDER BY clause against the
// table's column whitelist. Unknown columns fall back to the default so the
// clause can never inject SQL.
func orderByOrDefault(orderBy string, columns []string, def string) string {
	if orderBy == "" {
		return def
	}

	parts := strings.Fields(orderBy)
	if len(parts) == 0 || len(parts) > 2 {
		return def
	}

	col := strings.ToLower(parts[0])
	valid := false
	for _, c := range columns {
		if c == col {
			valid = true
			break
		}
	}
	if !valid {
		return def
	}

	if len(parts) == 2 {
		dir := strings.ToUpper(parts[1])
		if dir != "ASC" && dir != "DESC" {
			return col
		}
		return col + " " + dir
	}
	return col
}
