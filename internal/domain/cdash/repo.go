package cdash

import "context"

// Repository stores the collected demographics dataset between pipeline
// stages. Save replaces the whole dataset; stages are batch-oriented.
type Repository interface {
	Save(ctx context.Context, records []*DemographicRecord) error
	List(ctx context.Context) ([]*DemographicRecord, error)
	Count(ctx context.Context) (int, error)
}
