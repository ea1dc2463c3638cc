package domain

import "encoding/json"

// BrowseState is the sub-state of the Catalog Discovery Flow.
// It survives the switch to ModeOrdering so the customer can return to the same listing.
type BrowseState struct {
	Step BrowseStep `json:"step"`

	// Data always describes the list that was last rendered.
	Data StepData `json:"-"`

	// Cached snapshots.
	Categories []Category `json:"categories,omitempty"`
	Merchants  []Merchant `json:"merchants,omitempty"`
	Products   []Product  `json:"products,omitempty"`
	Results    []Product  `json:"results,omitempty"`

	// Filters.
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	District     string `json:"district,omitempty"`
	Area         string `json:"area,omitempty"`
	MerchantID   string `json:"merchant_id,omitempty"`
	MerchantName string `json:"merchant_name,omitempty"`

	// Cursors of the listings a "back" option returns to.
	ShopPage    int `json:"shop_page,omitempty"`
	ProductPage int `json:"product_page,omitempty"`
	ResultsPage int `json:"results_page,omitempty"`

	// ShopSearch is set when Merchants holds name search results instead of a district listing.
	ShopSearch bool `json:"shop_search,omitempty"`
	// ProductSearch is set when Results holds an in-shop search.
	ProductSearch bool   `json:"product_search,omitempty"`
	Query         string `json:"query,omitempty"`
}

// NewBrowseState starts browsing at step.
func NewBrowseState(step BrowseStep) *BrowseState {
	return &BrowseState{Step: step, ShopPage: 1, ProductPage: 1, ResultsPage: 1}
}

// Transition moves to step with the data describing what was just rendered.
func (b *BrowseState) Transition(step BrowseStep, data StepData) {
	b.Step = step
	b.Data = data
}

// FindMerchant looks a merchant up in the cached listing.
func (b *BrowseState) FindMerchant(id string) (Merchant, bool) {
	for _, m := range b.Merchants {
		if m.ID == id || (m.RecordID != "" && m.RecordID == id) {
			return m, true
		}
	}
	return Merchant{}, false
}

// FindCategory looks a category up in the cached list.
func (b *BrowseState) FindCategory(id string) (Category, bool) {
	for _, c := range b.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

type browseStateAlias BrowseState

func (b BrowseState) MarshalJSON() ([]byte, error) {
	env, err := encodeStepData(b.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		browseStateAlias
		Data *stepDataEnvelope `json:"data,omitempty"`
	}{browseStateAlias(b), env})
}

func (b *BrowseState) UnmarshalJSON(data []byte) error {
	aux := struct {
		*browseStateAlias
		Data *stepDataEnvelope `json:"data"`
	}{browseStateAlias: (*browseStateAlias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	sd, err := decodeStepData(aux.Data)
	if err != nil {
		return err
	}
	b.Data = sd
	return nil
}
