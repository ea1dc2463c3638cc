package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
)

const paymentPrompt = "💳 *SELECT PAYMENT METHOD*\n\n" +
	"*Select an option:*\n\n" +
	"1. Cash (Pay on delivery/collection)\n" +
	"2. Mobile Money\n" +
	"3. Bank Transfer\n" +
	"0. Cancel order"

var payments = map[string]domain.PaymentMethod{
	"1": domain.PaymentCash,
	"2": domain.PaymentMobileMoney,
	"3": domain.PaymentBankTransfer,
}

// collect handles the draft-filling steps. "0" has already been taken as cancel.
func (f *Flow) collect(ctx context.Context, c *chat.Conversation, text string) bool {
	o := c.Session.Order
	d := o.Draft

	switch o.Step {
	case domain.StepCollectingQuantity:
		q, err := strconv.Atoi(text)
		if err == nil {
			err = d.SetQuantity(q)
		}
		if err != nil {
			c.Say(ctx, "❌ Please type a number between 1 and 100.\n\n*Type 0 to cancel*")
			return true
		}
		move(c, domain.StepCollectingNotes, nil)
		c.Sayf(ctx, "✅ Quantity: %d\n💰 Total: %s\n\nAny special requests or notes?\n\n*Type your notes or:*\n1. No notes\n0. Cancel order",
			d.Quantity, chat.Price(d.Currency, d.TotalPrice))

	case domain.StepCollectingNotes:
		if text == "1" {
			d.SetNotes("")
		} else {
			d.SetNotes(text)
		}
		move(c, domain.StepCollectingDelivery, nil)
		c.Say(ctx, "📍 Do you want delivery?\n\n*Select an option:*\n1. Yes, I want delivery\n2. No, I will pickup\n0. Cancel order")

	case domain.StepCollectingDelivery:
		switch text {
		case "1":
			move(c, domain.StepCollectingAddressDetails, nil)
			c.Say(ctx, "📍 Please type your delivery address:\n\n*Type 0 to cancel*")
		case "2":
			d.SetPickup()
			move(c, domain.StepCollectingPayment, nil)
			c.Say(ctx, paymentPrompt)
		default:
			c.Say(ctx, "❌ Please type 1, 2, or 0.\n\n1. Delivery\n2. Pickup\n0. Cancel")
		}

	case domain.StepCollectingAddressDetails:
		if text == "" {
			c.Say(ctx, "📍 Please type your delivery address:\n\n*Type 0 to cancel*")
			return true
		}
		d.SetDeliveryAddress(text)
		move(c, domain.StepCollectingPayment, nil)
		c.Say(ctx, paymentPrompt)

	case domain.StepCollectingPayment:
		method, ok := payments[text]
		if !ok {
			c.Say(ctx, "❌ Please type 1, 2, 3, or 0.\n\n1. Cash\n2. Mobile Money\n3. Bank Transfer\n0. Cancel")
			return true
		}
		d.SetPaymentMethod(method)
		move(c, domain.StepConfirmingOrder, nil)
		c.Say(ctx, summary(d))

	case domain.StepConfirmingOrder:
		switch text {
		case "1":
			f.place(ctx, c)
		case "2":
			// Every other field is kept until it is answered again.
			move(c, domain.StepCollectingQuantity, nil)
			c.Say(ctx, "✏️ Editing order. How many would you like?\n\n*Type a number:* 1, 2, 3, etc.\n*Type 0 to cancel*")
		default:
			c.Say(ctx, "❌ Please type 1, 2, or 0.\n\n1. Confirm\n2. Edit\n0. Cancel")
		}
	}
	return true
}

// place submits the draft. A failure aborts to idle; there is no retry.
func (f *Flow) place(ctx context.Context, c *chat.Conversation) {
	o := c.Session.Order
	now := f.now()

	order, err := o.Draft.Complete(domain.NewOrderID(now), now)
	if err == nil {
		order, err = f.catalog.CreateOrder(ctx, order)
	}
	if err != nil {
		c.Failed("catalog", "CreateOrder", err)
		c.Metrics().OrderSubmitted(observability.OutcomeFailure)
		c.Say(ctx, "❌ Failed to place order. Please try again or contact support.")
		f.cancel(ctx, c)
		return
	}

	c.Metrics().OrderSubmitted(observability.OutcomeSuccess)
	c.Logger().Info("order: placed", "order", order.ID, "product", order.ProductID, "quantity", order.Quantity)

	o.Draft = nil
	o.Placed = &order
	move(c, domain.StepOrderComplete, domain.OrderPlaced{OrderID: order.ID})

	var sb strings.Builder
	sb.WriteString("✅ *ORDER PLACED SUCCESSFULLY!*\n\n")
	fmt.Fprintf(&sb, "*Order ID:* %s\n", order.ID)
	fmt.Fprintf(&sb, "*Product:* %s\n", order.ProductName)
	fmt.Fprintf(&sb, "*Quantity:* %d\n", order.Quantity)
	fmt.Fprintf(&sb, "*Total:* %s\n\n", chat.Price(order.Currency, order.TotalPrice))
	sb.WriteString("The seller will contact you shortly.\n\n")
	sb.WriteString("*Select an option:*\n")
	sb.WriteString(options(completeMenu(), nil))
	c.Say(ctx, sb.String())
}

func summary(d *domain.OrderDraft) string {
	var sb strings.Builder
	sb.WriteString("📋 *ORDER SUMMARY*\n\n")
	fmt.Fprintf(&sb, "*Product:* %s\n", d.ProductName)
	fmt.Fprintf(&sb, "*Quantity:* %d\n", d.Quantity)
	fmt.Fprintf(&sb, "*Total Price:* %s\n", chat.Price(d.Currency, d.TotalPrice))
	if d.Notes != "" && d.Notes != domain.NoNotes {
		fmt.Fprintf(&sb, "*Notes:* %s\n", d.Notes)
	}
	switch {
	case d.IsPickup():
		sb.WriteString("*Collection:* Pickup from shop\n")
	case d.DeliveryAddress != "":
		fmt.Fprintf(&sb, "*Delivery to:* %s\n", d.DeliveryAddress)
	}
	fmt.Fprintf(&sb, "*Payment:* %s\n\n", d.PaymentMethod.Label())
	sb.WriteString("*Select an option:*\n")
	sb.WriteString("1. Confirm order\n")
	sb.WriteString("2. Edit order\n")
	sb.WriteString("0. Cancel order\n\n")
	sb.WriteString(chat.TypeNumber)
	return sb.String()
}
