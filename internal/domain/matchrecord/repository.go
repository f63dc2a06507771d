package matchrecord

import "context"

// Repository stores finished matches. Save upserts by match id.
type Repository interface {
	Save(ctx context.Context, match Match) error
	List(ctx context.Context, limit int) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
}

// ActiveStateRepository stores the one in-progress match.
type ActiveStateRepository interface {
	SaveActive(ctx context.Context, active ActiveMatch) error
	LoadActive(ctx context.Context) (ActiveMatch, bool, error)
	ClearActive(ctx context.Context) error
}
