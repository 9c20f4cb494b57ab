package store

import (
	"context"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"golang.org/x/sync/errgroup"
)

// Resolver is what Populate needs from a store.
type Resolver interface {
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	GetProducts(ctx context.Context, ids []string) ([]models.Product, error)
}

// Populate resolves buyers and products for a page of orders. References to
// deleted products are dropped; a missing buyer keeps only its id.
func Populate(ctx context.Context, s Resolver, orders []models.Order) ([]models.OrderDetail, error) {
	var buyerIDs, productIDs []string
	for _, o := range orders {
		buyerIDs = append(buyerIDs, o.Buyer)
		productIDs = append(productIDs, o.Products...)
	}

	var (
		users    []models.User
		products []models.Product
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.GetUsers(ctx, dedupe(buyerIDs))
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.GetProducts(ctx, dedupe(productIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	refs := make(map[string]models.ProductRef, len(products))
	for _, p := range products {
		refs[p.ID] = p.Ref()
	}

	details := make([]models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		detail := models.OrderDetail{
			ID:        o.ID,
			Products:  make([]models.ProductRef, 0, len(o.Products)),
			Payment:   o.Payment,
			Buyer:     models.BuyerRef{ID: o.Buyer, Name: names[o.Buyer]},
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		}
		for _, id := range o.Products {
			if ref, ok := refs[id]; ok {
				detail.Products = append(detail.Products, ref)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}
