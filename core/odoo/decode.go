package odoo

import (
	"cost-sync/core/reconcile"
	"cost-sync/core/utils"
)

// recordsFromPayload converts a raw search_read reply into product records.
// Unexpected payload shapes decode to an empty slice rather than an error;
// the XML-RPC layer already failed loudly if the call itself went wrong.
func recordsFromPayload(raw interface{}) []reconcile.ProductRecord {
	rows, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	records := make([]reconcile.ProductRecord, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, recordFromPayload(m))
	}
	return records
}

// recordFromPayload maps one Odoo product row onto a ProductRecord.
// default_code arrives as false when the product has no SKU, and categ_id
// arrives as an [id, name] tuple.
func recordFromPayload(m map[string]interface{}) reconcile.ProductRecord {
	return reconcile.ProductRecord{
		ID:       utils.ToInt64(m["id"]),
		SKU:      utils.ToString(m["default_code"]),
		Name:     utils.ToString(m["name"]),
		Cost:     utils.ToFloat(m["standard_price"]),
		Category: categoryName(m["categ_id"]),
	}
}

// categoryName extracts the display name from a many2one tuple.
func categoryName(v interface{}) string {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) < 2 {
		return ""
	}
	return utils.ToString(tuple[1])
}

// companiesFromPayload converts a raw res.company reply into companies.
func companiesFromPayload(raw interface{}) []Company {
	rows, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	companies := make([]Company, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		companies = append(companies, Company{
			ID:   utils.ToInt64(m["id"]),
			Name: utils.ToString(m["name"]),
		})
	}
	return companies
}
