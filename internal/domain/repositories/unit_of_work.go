package repositories

import "context"

// UnitOfWork groups repository writes into one atomic scope.
// Repositories called inside fn must resolve their connection from ctx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
