package merchant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
)

const imagesPrompt = "📸 *How to add images:*\n" +
	"1. Tap the 📎 attachment icon\n" +
	"2. Select 📷 Camera or 🖼️ Gallery\n" +
	"3. Choose your product image\n" +
	"4. Send the image\n\n" +
	"*After sending images:*\n" +
	"• Type 'done' when finished\n" +
	"• Type 0 to cancel"

// showCategories opens step 1 of the wizard. The category list is loaded once per draft.
func (f *Flow) showCategories(ctx context.Context, c *chat.Conversation, header string) {
	m := c.Session.Merchant
	if len(m.Categories) == 0 {
		c.Say(ctx, "🔄 *Loading categories...*")
		categories, err := f.catalog.Categories(ctx)
		if err != nil {
			c.Failed("catalog", "Categories", err)
			m.ClearDraft()
			move(c, domain.StepDashboard, nil)
			c.Say(ctx, "❌ *Error*\n\nFailed to load categories. Please try again.\n\nType 0 to go back.")
			return
		}
		if len(categories) == 0 {
			m.ClearDraft()
			move(c, domain.StepDashboard, nil)
			c.Say(ctx, "❌ *No Categories Found*\n\nNo categories found in the system.\n\nPlease contact admin to add categories first.\n\nType 0 to go back.")
			return
		}
		m.Categories = categories
	}

	move(c, domain.StepAddProductCategory, nil)
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	sb.WriteString("📋 *Step 1/5: Select Category*\n\n")
	sb.WriteString("Choose the category for your product:\n\n")
	for i, cat := range m.Categories {
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, cat.DisplayIcon(), cat.Name)
	}
	sb.WriteString("\n*Type category number:*\n*Type 0 to cancel*")
	c.Say(ctx, sb.String())
}

func (f *Flow) onCategory(ctx context.Context, c *chat.Conversation, text string) bool {
	m := c.Session.Merchant
	if m.Draft == nil || len(m.Categories) == 0 {
		return false
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(m.Categories) {
		c.Sayf(ctx, "❌ *Invalid Selection*\n\nPlease type a number between 1 and %d.\n\nType 0 to cancel", len(m.Categories))
		return true
	}

	cat := m.Categories[n-1]
	m.Draft.SetCategory(cat)
	move(c, domain.StepAddProductName, nil)
	c.Sayf(ctx, "✅ *Step 1 Complete: Category Selected*\n\n📂 *Category:* %s\n\n"+
		"📋 *Step 2/5: Product Name*\n\n"+
		"What is the name of your product?\n\n"+
		"*Type the product name:*\n"+
		"*Type 0 to cancel*", cat.Name)
	return true
}

func (f *Flow) onName(ctx context.Context, c *chat.Conversation, text string) bool {
	d := c.Session.Merchant.Draft
	if d == nil {
		return false
	}
	if err := d.SetName(text); err != nil {
		c.Say(ctx, "❌ *Name Too Short*\n\nProduct name must be at least 2 characters.\n\nPlease enter product name:\n\nType 0 to cancel")
		return true
	}

	move(c, domain.StepAddProductDesc, nil)
	c.Sayf(ctx, "✅ *Step 2 Complete: Name Added*\n\n📝 *Product Name:* %s\n\n"+
		"📋 *Step 3/5: Product Description*\n\n"+
		"Describe your product:\n\n"+
		"*Type product description:*\n"+
		"*Type 'skip' to skip description*\n"+
		"*Type 0 to cancel*", d.Name)
	return true
}

func (f *Flow) onDescription(ctx context.Context, c *chat.Conversation, text string) bool {
	d := c.Session.Merchant.Draft
	if d == nil {
		return false
	}
	if d.SetDescription(text) {
		c.Say(ctx, "⏭️ *Skipping description...*")
	} else {
		c.Say(ctx, "✅ *Description saved!*")
	}

	move(c, domain.StepAddProductPrice, nil)
	c.Sayf(ctx, "✅ *Step 3 Complete: Description Added*\n\n"+
		"📋 *Step 4/5: Product Price*\n\n"+
		"What is the price in %s?\n\n"+
		"*Type price (numbers only):*\n"+
		"💡 *Example:* 15000\n\n"+
		"*Type 0 to cancel*", f.currency)
	return true
}

func (f *Flow) onPrice(ctx context.Context, c *chat.Conversation, text string) bool {
	d := c.Session.Merchant.Draft
	if d == nil {
		return false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err == nil && math.IsInf(price, 0) {
		err = domain.ErrInvalidPrice
	}
	if err == nil {
		err = d.SetPrice(price)
	}
	if err != nil {
		c.Say(ctx, "❌ *Invalid Price*\n\nPlease enter a valid number.\n\n💡 *Example:* 15000\n\nType 0 to cancel")
		return true
	}

	move(c, domain.StepAddProductImages, nil)
	c.Sayf(ctx, "✅ *Step 4 Complete: Price Set*\n\n💰 *Price:* %s\n\n"+
		"📋 *Step 5/5: Product Images*\n\n"+
		"Send up to %d images of your product.\n\n%s",
		chat.Price(f.currency, d.Price), domain.MaxProductImages, imagesPrompt)
	return true
}

// onImagesText handles text at the image step: "done", or the answer to the
// continue-without-images prompt.
func (f *Flow) onImagesText(ctx context.Context, c *chat.Conversation, text string) bool {
	m := c.Session.Merchant
	if m.Draft == nil {
		return false
	}

	if _, asked := m.Data.(domain.ImagesEmptyPrompt); asked {
		choice, ok := noImagesMenu().Decode(text)
		if !ok {
			c.Say(ctx, "❌ *Invalid Option*\n\nPlease type 1, 2, or 0.")
			return true
		}
		if choice.Action == actContinue {
			f.showConfirmation(ctx, c)
			return true
		}
		move(c, domain.StepAddProductImages, nil)
		c.Sayf(ctx, "📸 *Send up to %d images of your product.*\n\n%s", domain.MaxProductImages, imagesPrompt)
		return true
	}

	if !strings.EqualFold(text, "done") {
		c.Sayf(ctx, "📸 *Waiting for images*\n\n📸 *Progress:* %d/%d images added\n\n*Options:*\n• Send an image\n• Type 'done' to finish\n• Type 0 to cancel",
			len(m.Images), domain.MaxProductImages)
		return true
	}
	if len(m.Images) == 0 {
		move(c, domain.StepAddProductImages, domain.ImagesEmptyPrompt{})
		c.Say(ctx, "⚠️ *No Images Added*\n\nContinue without images?\n\n"+
			"1. ✅ Yes, continue without images\n"+
			"2. 📸 Add images\n"+
			"0. ❌ Cancel")
		return true
	}
	f.showConfirmation(ctx, c)
	return true
}

// AcceptsImage reports whether the session is at the wizard's image step.
func (f *Flow) AcceptsImage(sess *domain.Session) bool {
	m := sess.Merchant
	return sess.Mode == domain.ModeMerchant && m != nil && m.Step == domain.StepAddProductImages && m.Draft != nil
}

// HandleImage adds an uploaded image to the draft. It reports false outside the
// image step so the caller can answer with general guidance.
func (f *Flow) HandleImage(ctx context.Context, c *chat.Conversation, imageURL string) bool {
	if !f.AcceptsImage(c.Session) {
		return false
	}
	m := c.Session.Merchant

	if err := m.AddImage(imageURL); errors.Is(err, domain.ErrImageLimit) {
		c.Sayf(ctx, "✅ *Maximum Images Reached!*\n\n"+
			"You've added %d images (maximum).\n\n"+
			"*Options:*\n"+
			"• Type 'done' to continue\n"+
			"• Type 0 to cancel", domain.MaxProductImages)
		return true
	}

	// An image answers the continue-without-images prompt too.
	move(c, domain.StepAddProductImages, nil)
	c.Logger().Info("merchant: image added", "count", len(m.Images))
	c.Sayf(ctx, "✅ *Image Upload Successful!*\n\n"+
		"📸 *Progress:* %d/%d images added\n\n"+
		"*Options:*\n"+
		"• Send another image (%d remaining)\n"+
		"• Type 'done' to finish\n"+
		"• Type 0 to cancel", len(m.Images), domain.MaxProductImages, m.RemainingImages())
	return true
}

func (f *Flow) showConfirmation(ctx context.Context, c *chat.Conversation) {
	m := c.Session.Merchant
	d := m.Draft
	d.Images = append([]string(nil), m.Images...)
	move(c, domain.StepConfirmProduct, nil)

	var sb strings.Builder
	sb.WriteString("📋 *PRODUCT CONFIRMATION*\n\n")
	sb.WriteString("*Here's what we'll save:*\n\n")
	fmt.Fprintf(&sb, "📝 *Name:* %s\n", d.Name)
	fmt.Fprintf(&sb, "📄 *Description:* %s\n", d.Description)
	if d.CategoryName != "" {
		fmt.Fprintf(&sb, "📂 *Category:* %s\n", d.CategoryName)
	}
	fmt.Fprintf(&sb, "💰 *Price:* %s\n", chat.Price(f.currency, d.Price))
	if len(d.Images) > 0 {
		fmt.Fprintf(&sb, "📸 *Images:* %d uploaded\n", len(d.Images))
	} else {
		sb.WriteString("📸 *Images:* No images (optional)\n")
	}
	sb.WriteString("\n*Is this correct?*\n\n")
	sb.WriteString("1. ✅ Yes, save product now\n")
	sb.WriteString("2. ✏️ Edit product details\n")
	sb.WriteString("0. ❌ Cancel & discard\n\n")
	sb.WriteString(chat.TypeNumber)
	c.Say(ctx, sb.String())
}

func (f *Flow) onConfirm(ctx context.Context, c *chat.Conversation, text string) bool {
	m := c.Session.Merchant
	if m.Draft == nil {
		return false
	}
	choice, ok := confirmMenu().Decode(text)
	if !ok {
		c.Say(ctx, "❌ *Invalid Option*\n\nPlease type 1, 2, or 0.")
		return true
	}

	switch choice.Action {
	case actSave:
		c.Say(ctx, "🔄 *Saving your product to catalog...*")
		f.save(ctx, c)
	case actEdit:
		// Full redo: everything typed after the category is discarded.
		c.Say(ctx, "✏️ *Editing product...*")
		m.StartDraft()
		f.showCategories(ctx, c, "✏️ *EDITING PRODUCT*")
	}
	return true
}

// save submits the draft, registering the merchant by phone on first use.
// A failure keeps the draft at the confirmation step.
func (f *Flow) save(ctx context.Context, c *chat.Conversation) {
	m := c.Session.Merchant
	product, err := f.submit(ctx, c, m.Draft)
	if err != nil {
		c.Metrics().ProductSubmitted(observability.OutcomeFailure)
		move(c, domain.StepConfirmProduct, nil)
		c.Say(ctx, "❌ *Save Failed*\n\nFailed to save product. Please try again.\n\n"+
			"*Options:*\n"+
			"1. 🔄 Try saving again\n"+
			"2. ✏️ Edit product details\n"+
			"0. ❌ Cancel")
		return
	}

	c.Metrics().ProductSubmitted(observability.OutcomeSuccess)
	c.Logger().Info("merchant: product saved", "product", product.ID, "merchant", product.MerchantID)

	m.ClearDraft()
	move(c, domain.StepDashboard, domain.ProductSaved{ProductID: product.ID})
	c.Sayf(ctx, "🎉 *PRODUCT SAVED SUCCESSFULLY!*\n\n"+
		"✅ *%s* is now in your catalog!\n\n"+
		"📋 *Product Details:*\n"+
		"• Name: %s\n"+
		"• Price: %s\n"+
		"• Status: ✅ Active\n\n"+
		"*What would you like to do next?*\n\n"+
		"1. 📦 Add another product\n"+
		"2. 🏪 Shop owner dashboard\n"+
		"3. 🏠 Main menu\n\n"+
		chat.TypeNumber, product.Name, product.Name, chat.Price(product.Currency, product.Price))
}

func (f *Flow) submit(ctx context.Context, c *chat.Conversation, d *domain.ProductDraft) (domain.Product, error) {
	now := f.now()

	owner, err := f.catalog.MerchantByPhone(ctx, c.Phone())
	if errors.Is(err, domain.ErrNotFound) {
		owner, err = f.catalog.CreateMerchant(ctx, domain.Merchant{
			ID:         domain.NewMerchantID(now),
			Name:       "Shop " + c.Phone(),
			Phone:      c.Phone(),
			CategoryID: d.CategoryID,
		})
		if err != nil {
			c.Failed("catalog", "CreateMerchant", err)
			return domain.Product{}, err
		}
		c.Logger().Info("merchant: registered", "merchant", owner.ID)
	} else if err != nil {
		c.Failed("catalog", "MerchantByPhone", err)
		return domain.Product{}, err
	}

	product, err := d.Complete(domain.NewProductID(now), owner.ID, now)
	if err != nil {
		c.Failed("catalog", "CreateProduct", err)
		return domain.Product{}, err
	}
	product.Currency = f.currency
	created, err := f.catalog.CreateProduct(ctx, product)
	if err != nil {
		c.Failed("catalog", "CreateProduct", err)
		return domain.Product{}, err
	}
	return created, nil
}
