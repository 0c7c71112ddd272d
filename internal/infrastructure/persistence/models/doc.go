// Package models contains GORM persistence models that map to database tables.
// Models are kept apart from domain entities so the domain layer stays free of
// ORM tags; every model provides ToDomain and FromDomain mappers.
//
// Numeric columns use the lenient Numeric and Integer types: a NULL or
// malformed stored value reads back as zero instead of failing the scan.
package models
