// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models hold the table mappings
// 3. ToDomain / FromDomain convert between the two
// 4. Stock columns of products are written by the batch ledger repositories only
//
// Line items of sales, returns and orders are stored as JSON documents on
// their parent row.
package models
