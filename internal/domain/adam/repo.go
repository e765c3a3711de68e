package adam

import "context"

// Repository stores the ADSL dataset produced by the analysis derivation.
type Repository interface {
	Save(ctx context.Context, records []*SubjectLevel) error
	List(ctx context.Context) ([]*SubjectLevel, error)
	Count(ctx context.Context) (int, error)
}
