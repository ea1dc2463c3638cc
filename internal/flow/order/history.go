package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
)

const (
	actViewOrder  paging.Action = "view_order"
	actBrowseMore paging.Action = "browse_more"
	actBrowse     paging.Action = "browse"
	actMyOrders   paging.Action = "my_orders"
	actRetry      paging.Action = "retry"
	actMainMenu   paging.Action = "main_menu"
)

var labels = map[paging.Action]string{
	actViewOrder:  "View this order",
	actBrowseMore: "Browse more products",
	actBrowse:     "Browse products",
	actMyOrders:   "Back to my orders",
	actRetry:      "Try again",
	actMainMenu:   "Main menu",
}

func completeMenu() paging.Menu {
	return paging.NewMenu(0, false, actViewOrder, actBrowseMore, actMainMenu)
}

func ordersMenu(count int) paging.Menu {
	if count == 0 {
		return paging.NewMenu(0, false, actBrowse, actMainMenu)
	}
	return paging.NewMenu(count, false, actMainMenu)
}

func retryMenu() paging.Menu {
	return paging.NewMenu(0, false, actRetry, actMainMenu)
}

func orderMenu() paging.Menu {
	return paging.NewMenu(0, false, actMyOrders, actMainMenu)
}

func options(m paging.Menu, overrides map[paging.Action]string) string {
	return strings.Join(m.Lines(func(a paging.Action) string {
		if s, ok := overrides[a]; ok {
			return s
		}
		return labels[a]
	}), "\n")
}

// ShowOrders lists the customer's orders, newest first.
// A load failure leaves the step without data and offers a retry.
func (f *Flow) ShowOrders(ctx context.Context, c *chat.Conversation) bool {
	c.Session.Mode = domain.ModeOrdering
	c.Session.Order = &domain.OrderState{}
	o := c.Session.Order

	orders, err := f.catalog.CustomerOrders(ctx, c.Phone())
	if err != nil {
		c.Failed("catalog", "CustomerOrders", err)
		move(c, domain.StepViewingOrders, nil)
		c.Say(ctx, "❌ Error loading orders.\n\n*Select:*\n"+options(retryMenu(), nil))
		return true
	}

	o.Orders = orders
	move(c, domain.StepViewingOrders, domain.OrderList{Count: len(orders)})
	if len(orders) == 0 {
		c.Say(ctx, "📭 You have no orders yet.\n\n*Select:*\n"+options(ordersMenu(0), nil))
		return true
	}

	var sb strings.Builder
	sb.WriteString("📦 *YOUR ORDERS*\n\n")
	for i, order := range orders {
		fmt.Fprintf(&sb, "%d. *%s*\n", i+1, order.ProductName)
		fmt.Fprintf(&sb, "   📅 %s\n", order.OrderDate)
		fmt.Fprintf(&sb, "   🆔 %s\n", order.ID)
		fmt.Fprintf(&sb, "   📊 %s %s\n", order.Status.Emoji(), strings.ToUpper(string(order.Status)))
		fmt.Fprintf(&sb, "   💰 %s\n\n", chat.Price(order.Currency, order.TotalPrice))
	}
	sb.WriteString("*Select an option:*\n")
	for i := range orders {
		fmt.Fprintf(&sb, "%d. View order %d\n", i+1, i+1)
	}
	sb.WriteString(options(ordersMenu(len(orders)), nil))
	sb.WriteString("\n\n" + chat.TypeNumber)
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) showOrder(ctx context.Context, c *chat.Conversation, idx int) bool {
	o := c.Session.Order
	order := o.Orders[idx]
	move(c, domain.StepViewingOrder, domain.OrderDetail{Index: idx})

	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 *ORDER %s*\n\n", order.ID)
	fmt.Fprintf(&sb, "*Product:* %s\n", order.ProductName)
	fmt.Fprintf(&sb, "*Quantity:* %d\n", order.Quantity)
	fmt.Fprintf(&sb, "*Total:* %s\n", chat.Price(order.Currency, order.TotalPrice))
	fmt.Fprintf(&sb, "*Status:* %s %s\n", order.Status.Emoji(), strings.ToUpper(string(order.Status)))
	if order.PaymentMethod != "" {
		fmt.Fprintf(&sb, "*Payment:* %s\n", order.PaymentMethod.Label())
	}
	switch {
	case order.IsPickup():
		sb.WriteString("*Collection:* Pickup from shop\n")
	case order.DeliveryAddress != "":
		fmt.Fprintf(&sb, "*Delivery to:* %s\n", order.DeliveryAddress)
	}
	if order.Notes != "" && order.Notes != domain.NoNotes {
		fmt.Fprintf(&sb, "*Notes:* %s\n", order.Notes)
	}
	fmt.Fprintf(&sb, "*Date:* %s\n\n", order.OrderDate)
	sb.WriteString("*Select an option:*\n")
	sb.WriteString(options(orderMenu(), nil))
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onComplete(ctx context.Context, c *chat.Conversation, text string) bool {
	o := c.Session.Order
	if _, ok := o.Data.(domain.OrderPlaced); !ok || o.Placed == nil {
		return false
	}
	choice, ok := f.choose(ctx, c, completeMenu(), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case actViewOrder:
		o.Orders = []domain.Order{*o.Placed}
		return f.showOrder(ctx, c, 0)
	case actBrowseMore:
		c.Session.Order = nil
		if f.browse == nil {
			c.Home(ctx)
			return true
		}
		return f.browse.Resume(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

func (f *Flow) onOrders(ctx context.Context, c *chat.Conversation, text string) bool {
	o := c.Session.Order
	if o.Data == nil {
		choice, ok := f.choose(ctx, c, retryMenu(), text)
		if !ok {
			return true
		}
		if choice.Action == actRetry {
			return f.ShowOrders(ctx, c)
		}
		c.Home(ctx)
		return true
	}

	data, ok := o.Data.(domain.OrderList)
	if !ok {
		return false
	}
	choice, ok := f.choose(ctx, c, ordersMenu(data.Count), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		idx := choice.Option - 1
		if idx >= len(o.Orders) {
			c.Say(ctx, "❌ Order not found.")
			return f.ShowOrders(ctx, c)
		}
		return f.showOrder(ctx, c, idx)
	case actBrowse:
		c.Session.Order = nil
		if f.browse == nil {
			c.Home(ctx)
			return true
		}
		return f.browse.StartCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

func (f *Flow) onOrder(ctx context.Context, c *chat.Conversation, text string) bool {
	if _, ok := c.Session.Order.Data.(domain.OrderDetail); !ok {
		return false
	}
	choice, ok := f.choose(ctx, c, orderMenu(), text)
	if !ok {
		return true
	}
	if choice.Action == actMyOrders {
		return f.ShowOrders(ctx, c)
	}
	c.Home(ctx)
	return true
}

// choose decodes a reply against m. Outside the draft steps "0" goes home.
func (f *Flow) choose(ctx context.Context, c *chat.Conversation, m paging.Menu, reply string) (paging.Choice, bool) {
	if reply == "0" {
		return paging.Choice{Action: actMainMenu}, true
	}
	choice, ok := m.Decode(reply)
	if !ok {
		c.Say(ctx, chat.OutOfRange(m.Max()))
	}
	return choice, ok
}
