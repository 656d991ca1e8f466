package trader

import "context"

type Trader interface {
	Init(ctx context.Context) error
	// Close release resource allocated by Init
	Close(ctx context.Context)
	Print(ctx context.Context) error
	Clear(ctx context.Context) error
	Start(ctx context.Context) error
}
