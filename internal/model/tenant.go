// Package model defines the domain models.
package model

import "time"

// Tenant is an isolated customer organization. Opportunities belonging to
// one tenant are never visible to another.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
