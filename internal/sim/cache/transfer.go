package cache

import "errors"

var (
	ErrCacheEmpty  = errors.New("cache is empty")
	ErrWalletEmpty = errors.New("wallet is empty")
)

// Take moves the cache's newest coin into the wallet.
func Take(e *CacheEntity, w *Wallet) (Coin, error) {
	n := len(e.ledger)
	if n == 0 {
		return Coin{}, ErrCacheEmpty
	}
	c := e.ledger[n-1]
	e.ledger = e.ledger[:n-1]
	w.held = append(w.held, c)
	return c, nil
}

// Deposit moves the wallet's newest coin into the cache.
func Deposit(e *CacheEntity, w *Wallet) (Coin, error) {
	n := len(w.held)
	if n == 0 {
		return Coin{}, ErrWalletEmpty
	}
	c := w.held[n-1]
	w.held = w.held[:n-1]
	e.ledger = append(e.ledger, c)
	return c, nil
}
