package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
)

// Cart is the buyer's cart. Every mutation is written through to storage;
// the in-memory state changes even when the write fails.
type Cart struct {
	mu      sync.Mutex
	items   []models.CartItem
	storage Storage
}

// LoadCart restores the cart from storage. Unreadable stored data leaves an
// empty cart and is reported.
func LoadCart(storage Storage) (*Cart, error) {
	c := &Cart{storage: storage, items: []models.CartItem{}}
	return c, c.Restore()
}

// Restore replaces the in-memory cart with the stored one.
func (c *Cart) Restore() error {
	data, err := c.storage.Get(KeyCart)
	if errors.Is(err, ErrNoValue) {
		c.set([]models.CartItem{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.set([]models.CartItem{})
		return fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	c.set(items)
	return nil
}

func (c *Cart) set(items []models.CartItem) {
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

func (c *Cart) Add(item models.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return c.persist()
}

// Remove drops the first entry for productID. The same product may sit in
// the cart more than once.
func (c *Cart) Remove(productID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == productID {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true, c.persist()
		}
	}
	return false, nil
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []models.CartItem{}
	return c.storage.Remove(KeyCart)
}

func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem{}, c.items...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Total() decimal.Decimal {
	return models.CartTotal(c.Items())
}

// persist must be called with c.mu held.
func (c *Cart) persist() error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	if err := c.storage.Set(KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
