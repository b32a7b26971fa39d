package postgres

import (
	"fmt"
	"strings"

	"invoicepipe/internal/domain"
)

// sortColumns maps API sortBy values to SQL expressions. Only these are
// ever interpolated into ORDER BY.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"fileName":    "file_name",
	"vendorName":  "vendor->>'name'",
	"invoiceDate": "invoice_data->>'date'",
	"total":       "(invoice_data->>'total')::numeric",
}

// ListWhereClause builds the WHERE clause for invoice listing. It returns the
// clause (empty when there are no conditions) and its positional arguments.
func ListWhereClause(filter domain.InvoiceFilter) (clause string, args []interface{}) {
	var conds []string
	argN := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, fmt.Sprintf(
			"(vendor->>'name' ILIKE $%d OR invoice_data->>'number' ILIKE $%d OR file_name ILIKE $%d)",
			argN, argN, argN))
		args = append(args, "%"+escapeLike(q)+"%")
		argN++
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("extraction_status = $%d", argN))
		args = append(args, filter.Status)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListOrderClause returns the ORDER BY clause for the filter. Unknown sort
// fields fall back to created_at; the default direction is descending.
func ListOrderClause(filter domain.InvoiceFilter) string {
	col, ok := sortColumns[filter.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, id %s", col, dir, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
