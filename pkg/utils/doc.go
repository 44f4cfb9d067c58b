// Package utils provides small helpers shared across osprey.
//
// # Identifiers
//
// The migration ledger's table name comes from user configuration and is
// interpolated into DDL, so it is validated and quoted before use:
//
//	if !utils.IsValidIdentifier(table) {
//		return errors.Errorf("invalid table name: %q", table)
//	}
//
//	quoted := utils.QuoteIdentifier(table, '"')
//	// "public"."_migrations"
package utils
