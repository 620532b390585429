package sections

import (
	"sync"

	"go.uber.org/zap"
)

// Boards holds one Board per product.
type Boards struct {
	logger *zap.Logger

	mu     sync.Mutex
	boards map[string]*Board
}

// NewBoards creates an empty set of boards.
func NewBoards(logger *zap.Logger) *Boards {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boards{logger: logger, boards: make(map[string]*Board)}
}

// For returns the product's board, creating it on first use.
func (b *Boards) For(productID string) *Board {
	b.mu.Lock()
	defer b.mu.Unlock()

	board, ok := b.boards[productID]
	if !ok {
		board = NewBoard(productID, b.logger.With(zap.String("product", productID)))
		b.boards[productID] = board
	}
	return board
}

// Len returns the number of products with a board.
func (b *Boards) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.boards)
}
