package cache

// Wallet holds the player's coins in the order they were picked up.
type Wallet struct {
	held []Coin
}

func NewWallet() *Wallet { return &Wallet{} }

func (w *Wallet) Coins() int { return len(w.held) }

func (w *Wallet) Held() []Coin {
	return append([]Coin(nil), w.held...)
}
