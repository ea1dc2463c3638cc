package domain

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/mercato/pkg/paging"
)

// StepData is the payload a step needs to decode the next reply exactly as the
// last list was rendered. Each variant carries only what its decoder reads.
type StepData interface {
	StepKind() string
}

// Step data kinds, used as the tag of the serialized envelope.
const (
	KindCategoryMenu  = "category_menu"
	KindDistrictMenu  = "district_menu"
	KindShopList      = "shop_list"
	KindProductList   = "product_list"
	KindResultList    = "result_list"
	KindProductDetail = "product_detail"
	KindNoResults     = "no_results"
	KindOrderList     = "order_list"
	KindOrderDetail   = "order_detail"
	KindOrderPlaced   = "order_placed"
	KindImagesEmpty   = "images_empty"
	KindProductSaved  = "product_saved"
)

// CategoryMenu is a numbered list of the cached categories.
type CategoryMenu struct {
	Count int `json:"count"`
}

// DistrictMenu is a numbered list of districts. Also used for location browsing.
type DistrictMenu struct {
	Districts []string `json:"districts"`
}

// ShopList is a page of the cached merchant listing.
type ShopList struct {
	Page paging.Page `json:"page"`
}

// ProductList is a page of the selected shop's products.
type ProductList struct {
	Page paging.Page `json:"page"`
}

// ResultList is a page of the cached search or district results.
type ResultList struct {
	Page paging.Page `json:"page"`
}

// ProductDetail identifies the product on screen and the listing it was opened from.
type ProductDetail struct {
	// Index is the absolute index in BrowseState.Products, or in Results when FromResults.
	Index       int        `json:"index"`
	FromResults bool       `json:"from_results,omitempty"`
	Return      BrowseStep `json:"return"`
}

// NoResults marks a search step whose last query matched nothing.
// Numeric replies then select from the fallback menu instead of starting a new query.
type NoResults struct {
	Query string `json:"query"`
}

// OrderList is the numbered list of the customer's orders.
type OrderList struct {
	Count int `json:"count"`
}

// OrderDetail is a single order on screen.
type OrderDetail struct {
	Index int `json:"index"`
}

// OrderPlaced follows a successful submission.
type OrderPlaced struct {
	OrderID string `json:"order_id"`
}

// ImagesEmptyPrompt asks whether to continue a product without images.
type ImagesEmptyPrompt struct{}

// ProductSaved follows a successful product submission.
type ProductSaved struct {
	ProductID string `json:"product_id"`
}

func (CategoryMenu) StepKind() string      { return KindCategoryMenu }
func (DistrictMenu) StepKind() string      { return KindDistrictMenu }
func (ShopList) StepKind() string          { return KindShopList }
func (ProductList) StepKind() string       { return KindProductList }
func (ResultList) StepKind() string        { return KindResultList }
func (ProductDetail) StepKind() string     { return KindProductDetail }
func (NoResults) StepKind() string         { return KindNoResults }
func (OrderList) StepKind() string         { return KindOrderList }
func (OrderDetail) StepKind() string       { return KindOrderDetail }
func (OrderPlaced) StepKind() string       { return KindOrderPlaced }
func (ImagesEmptyPrompt) StepKind() string { return KindImagesEmpty }
func (ProductSaved) StepKind() string      { return KindProductSaved }

var stepDataDecoders = map[string]func(json.RawMessage) (StepData, error){
	KindCategoryMenu:  decodeAs[CategoryMenu],
	KindDistrictMenu:  decodeAs[DistrictMenu],
	KindShopList:      decodeAs[ShopList],
	KindProductList:   decodeAs[ProductList],
	KindResultList:    decodeAs[ResultList],
	KindProductDetail: decodeAs[ProductDetail],
	KindNoResults:     decodeAs[NoResults],
	KindOrderList:     decodeAs[OrderList],
	KindOrderDetail:   decodeAs[OrderDetail],
	KindOrderPlaced:   decodeAs[OrderPlaced],
	KindImagesEmpty:   decodeAs[ImagesEmptyPrompt],
	KindProductSaved:  decodeAs[ProductSaved],
}

func decodeAs[T StepData](raw json.RawMessage) (StepData, error) {
	var v T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// stepDataEnvelope is the tagged wire form of a StepData value.
type stepDataEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeStepData(sd StepData) (*stepDataEnvelope, error) {
	if sd == nil {
		return nil, nil
	}
	raw, err := json.Marshal(sd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step data %q: %w", sd.StepKind(), err)
	}
	return &stepDataEnvelope{Kind: sd.StepKind(), Data: raw}, nil
}

func decodeStepData(env *stepDataEnvelope) (StepData, error) {
	if env == nil {
		return nil, nil
	}
	decode, ok := stepDataDecoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown step data kind %q", env.Kind)
	}
	sd, err := decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode step data %q: %w", env.Kind, err)
	}
	return sd, nil
}
