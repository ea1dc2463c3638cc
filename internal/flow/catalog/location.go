package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
	"golang.org/x/sync/errgroup"
)

// aggregateConcurrency bounds the product lookups issued for one district.
const aggregateConcurrency = 4

// showLocations renders every district of the catalog.
func (f *Flow) showLocations(ctx context.Context, c *chat.Conversation) bool {
	districts, err := f.catalog.AllDistricts(ctx)
	if err != nil {
		c.Failed("catalog", "AllDistricts", err)
		c.Say(ctx, "❌ Error loading locations.")
		return false
	}
	if len(districts) == 0 {
		c.Say(ctx, "❌ No locations available yet.")
		return false
	}

	move(c, domain.StepSelectLocation, domain.DistrictMenu{Districts: districts})

	var sb strings.Builder
	sb.WriteString("📍 *BROWSE BY LOCATION*\n\n")
	sb.WriteString("Choose a district by number:\n\n")
	for i, d := range districts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, d)
	}
	sb.WriteString("\n")
	sb.WriteString(options(locationMenu(len(districts)), "", map[paging.Action]string{
		actBrowseCategories: "📂 Browse categories",
		actMainMenu:         "🏠 Main menu",
	}))
	sb.WriteString("\n\n" + chat.TypeNumber)
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onLocation(ctx context.Context, c *chat.Conversation, text string) bool {
	data, ok := c.Session.Browse.Data.(domain.DistrictMenu)
	if !ok {
		return false
	}
	choice, ok := choose(ctx, c, locationMenu(len(data.Districts)), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		return f.loadDistrict(ctx, c, data.Districts[choice.Option-1])
	case actBrowseCategories:
		return f.showCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// loadDistrict aggregates the products of every merchant in district.
// The per-merchant lookups run concurrently and keep the merchant order.
func (f *Flow) loadDistrict(ctx context.Context, c *chat.Conversation, district string) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "📍 *Loading products in %s...*", district)

	merchants, err := f.catalog.MerchantsByDistrict(ctx, district)
	if err != nil {
		c.Failed("catalog", "MerchantsByDistrict", err)
		c.Say(ctx, "❌ Error loading products. Please try again.")
		return true
	}

	perMerchant := make([][]domain.Product, len(merchants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateConcurrency)
	for i, m := range merchants {
		g.Go(func() error {
			products, err := f.catalog.ProductsByMerchant(gctx, m.ID)
			if err != nil {
				return fmt.Errorf("merchant %s: %w", m.ID, err)
			}
			perMerchant[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.Failed("catalog", "ProductsByMerchant", err)
		c.Say(ctx, "❌ Error loading products. Please try again.")
		return true
	}

	var products []domain.Product
	for _, list := range perMerchant {
		products = append(products, list...)
	}
	if len(products) == 0 {
		c.Sayf(ctx, "❌ No products found in %s.", district)
		return f.showLocations(ctx, c)
	}

	b.District = district
	b.Merchants = merchants
	b.Results = products
	b.Query = ""
	return f.showResults(ctx, c, domain.StepShowDistrictProducts, 1)
}
