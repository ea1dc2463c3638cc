package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// NoDescription is stored when the merchant skips the description step.
	NoDescription = "No description provided"

	// SkipKeyword skips the description step.
	SkipKeyword = "skip"
)

// MerchantState is the sub-state of the Merchant Onboarding Flow.
type MerchantState struct {
	Step MerchantStep `json:"step"`
	Data StepData     `json:"-"`

	// Draft is the product being created. Nil at the dashboard.
	Draft *ProductDraft `json:"draft,omitempty"`

	// Images accumulates the uploaded image URLs, at most MaxProductImages.
	Images []string `json:"images,omitempty"`

	// Categories caches the list offered at the category step.
	Categories []Category `json:"categories,omitempty"`
}

// Transition moves to step with the data describing what was just rendered.
func (m *MerchantState) Transition(step MerchantStep, data StepData) {
	m.Step = step
	m.Data = data
}

// AddImage appends an image URL. It refuses without mutation once the cap is reached.
func (m *MerchantState) AddImage(url string) error {
	if len(m.Images) >= MaxProductImages {
		return ErrImageLimit
	}
	m.Images = append(m.Images, url)
	return nil
}

// RemainingImages returns how many images can still be added.
func (m *MerchantState) RemainingImages() int {
	return MaxProductImages - len(m.Images)
}

// StartDraft discards any previous draft and its images.
func (m *MerchantState) StartDraft() {
	m.Draft = &ProductDraft{}
	m.Images = nil
}

// ClearDraft drops the draft after submission or cancellation.
func (m *MerchantState) ClearDraft() {
	m.Draft = nil
	m.Images = nil
	m.Categories = nil
}

type merchantStateAlias MerchantState

func (m MerchantState) MarshalJSON() ([]byte, error) {
	env, err := encodeStepData(m.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		merchantStateAlias
		Data *stepDataEnvelope `json:"data,omitempty"`
	}{merchantStateAlias(m), env})
}

func (m *MerchantState) UnmarshalJSON(data []byte) error {
	aux := struct {
		*merchantStateAlias
		Data *stepDataEnvelope `json:"data"`
	}{merchantStateAlias: (*merchantStateAlias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	sd, err := decodeStepData(aux.Data)
	if err != nil {
		return err
	}
	m.Data = sd
	return nil
}

// ProductDraft is a product filled in by the onboarding wizard.
type ProductDraft struct {
	CategoryID   string   `json:"category_id" validate:"required"`
	CategoryName string   `json:"category_name,omitempty"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Price        float64  `json:"price" validate:"gt=0"`
	Images       []string `json:"images,omitempty" validate:"max=3"`
}

// SetCategory stores the chosen category.
func (d *ProductDraft) SetCategory(c Category) {
	d.CategoryID = c.ID
	d.CategoryName = c.Name
}

// SetName stores the product name. Names shorter than MinNameLength characters are refused.
func (d *ProductDraft) SetName(name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return ErrNameTooShort
	}
	d.Name = name
	return nil
}

// SetDescription stores the description. The skip keyword stores NoDescription.
// It reports whether the description was skipped.
func (d *ProductDraft) SetDescription(text string) bool {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, SkipKeyword) || text == "" {
		d.Description = NoDescription
		return true
	}
	d.Description = text
	return false
}

// SetPrice stores a positive price.
func (d *ProductDraft) SetPrice(price float64) error {
	if !(price > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	d.Price = price
	return nil
}

// Complete converts the draft into an in-stock product owned by merchantID.
func (d *ProductDraft) Complete(id, merchantID string, now time.Time) (Product, error) {
	if err := validate.Struct(d); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
	}
	return Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Currency:    DefaultCurrency,
		Images:      append([]string(nil), d.Images...),
		InStock:     true,
		MerchantID:  merchantID,
		CategoryID:  d.CategoryID,
		CreatedDate: now.Format(DateLayout),
	}, nil
}

// NewProductID derives a product identifier: "PROD-" and the last 8 digits of epoch milliseconds.
func NewProductID(now time.Time) string {
	return "PROD-" + lastDigits(now.UnixMilli(), 8)
}

// NewMerchantID derives a merchant identifier: "SHOP-" and the last 8 digits of epoch milliseconds.
func NewMerchantID(now time.Time) string {
	return "SHOP-" + lastDigits(now.UnixMilli(), 8)
}
