package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByCreated = "created_at"
	orderByUpdated = "updated_at"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByCreated: "created_at DESC",
	orderByUpdated: "updated_at DESC",
}

const defaultOrderBy = "created_at DESC"

const baseJobsSelect = `SELECT id, name, report_type, request_id, report_id,
	state, status, polls, archive_location, bytes, ack_error, error_text,
	created_at, updated_at, completed_at
FROM jobs`

const countJobsSelect = "SELECT COUNT(*) FROM jobs"

// limit returns the effective page size.
func (q *JobQuery) limit() int {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return min(limit, maxLimit)
}

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a job query.
// It returns two SQL strings (one for the data query, one for the count query)
// and the positional parameters.
func (q *JobQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Name != "" {
		conditions = append(conditions, fmt.Sprintf("name = $%d", paramIdx))
		args = append(args, q.Name)
		paramIdx++
	}

	if len(q.States) > 0 {
		placeholders := make([]string, len(q.States))
		for i, s := range q.States {
			placeholders[i] = fmt.Sprintf("$%d", paramIdx)
			args = append(args, string(s))
			paramIdx++
		}
		conditions = append(conditions, fmt.Sprintf(
			"state IN (%s)", strings.Join(placeholders, ", "),
		))
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if col, ok := validOrderBy[q.OrderBy]; ok {
		orderClause = col
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseJobsSelect, whereClause, orderClause, q.limit(), offset,
	)

	countSQL = countJobsSelect + whereClause

	return dataSQL, countSQL, args
}
