package repo

import "context"

// TxExecutor runs fn inside one store transaction. Repository calls made
// with txCtx join that transaction.
type TxExecutor interface {
	ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
