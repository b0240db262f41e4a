package interfaces

import "context"

// DataResetter wipes every asset collection. Only the seeder uses it.
type DataResetter interface {
	DeleteAll(ctx context.Context) error
}
