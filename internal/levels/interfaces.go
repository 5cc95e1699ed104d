package levels

import "context"

type Loader interface {
	LoadCatalog(ctx context.Context, root string) ([]Level, error)
	FindLevel(levels []Level, levelID string) (int, Level, error)
}
