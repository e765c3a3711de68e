package sdtm

import "context"

// Repository stores the DM dataset between pipeline stages. Save replaces
// the dataset wholesale; the imputation stage loads, mutates, and re-saves.
type Repository interface {
	Save(ctx context.Context, records []*Demographic) error
	List(ctx context.Context) ([]*Demographic, error)
	Count(ctx context.Context) (int, error)
}
