package mws

import (
	"context"
	"fmt"
	"strconv"
)

// Products groups the product catalog and pricing operations.
type Products struct {
	client *Client
}

// Products returns the product operations bound to c.
func (c *Client) Products() *Products {
	return &Products{client: c}
}

// Item conditions accepted by the pricing calls.
const (
	ConditionAny = "Any"
	ConditionNew = "New"
)

// ResultError is a per-item error inside an otherwise successful response.
type ResultError struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarketplaceASIN identifies a product in one marketplace.
type MarketplaceASIN struct {
	MarketplaceID string `xml:"MarketplaceId"`
	ASIN          string `xml:"ASIN"`
}

// ItemAttributes is the subset of catalog attributes decoded.
type ItemAttributes struct {
	Title           string `xml:"Title"`
	Brand           string `xml:"Brand"`
	Color           string `xml:"Color"`
	Model           string `xml:"Model"`
	PartNumber      string `xml:"PartNumber"`
	ProductGroup    string `xml:"ProductGroup"`
	ProductTypeName string `xml:"ProductTypeName"`
	PackageWeight   string `xml:"PackageDimensions>Weight"`
}

// SalesRank is a product's rank in one category.
type SalesRank struct {
	ProductCategoryID string `xml:"ProductCategoryId"`
	Rank              int    `xml:"Rank"`
}

// Price is a landed/listing/shipping price triple.
type Price struct {
	LandedPrice  Money `xml:"LandedPrice"`
	ListingPrice Money `xml:"ListingPrice"`
	Shipping     Money `xml:"Shipping"`
}

// CompetitivePrice is one competitive price point.
type CompetitivePrice struct {
	BelongsToRequester bool   `xml:"belongsToRequester,attr"`
	Condition          string `xml:"condition,attr"`
	Subcondition       string `xml:"subcondition,attr"`
	PriceID            string `xml:"CompetitivePriceId"`
	Price              Price  `xml:"Price"`
}

// LowestOfferListing is one entry of GetLowestOfferListings.
type LowestOfferListing struct {
	ItemCondition                   string `xml:"Qualifiers>ItemCondition"`
	ItemSubcondition                string `xml:"Qualifiers>ItemSubcondition"`
	FulfillmentChannel              string `xml:"Qualifiers>FulfillmentChannel"`
	NumberOfOfferListingsConsidered int    `xml:"NumberOfOfferListingsConsidered"`
	Price                           Price  `xml:"Price"`
}

// MyOffer is the caller's own offer as returned by GetMyPrice.
type MyOffer struct {
	BuyingPrice        Price  `xml:"BuyingPrice"`
	RegularPrice       Money  `xml:"RegularPrice"`
	FulfillmentChannel string `xml:"FulfillmentChannel"`
	ItemCondition      string `xml:"ItemCondition"`
	ItemSubCondition   string `xml:"ItemSubCondition"`
	SellerID           string `xml:"SellerId"`
	SellerSKU          string `xml:"SellerSKU"`
}

// Product is a catalog entry with whichever sections the call returned.
type Product struct {
	Identifiers         MarketplaceASIN      `xml:"Identifiers>MarketplaceASIN"`
	SellerSKU           string               `xml:"Identifiers>SKUIdentifier>SellerSKU"`
	Attributes          ItemAttributes       `xml:"AttributeSets>ItemAttributes"`
	SalesRankings       []SalesRank          `xml:"SalesRankings>SalesRank"`
	CompetitivePrices   []CompetitivePrice   `xml:"CompetitivePricing>CompetitivePrices>CompetitivePrice"`
	LowestOfferListings []LowestOfferListing `xml:"LowestOfferListings>LowestOfferListing"`
	Offers              []MyOffer            `xml:"Offers>Offer"`
}

// ProductCategory is a node of the browse tree.
type ProductCategory struct {
	ID     string           `xml:"ProductCategoryId"`
	Name   string           `xml:"ProductCategoryName"`
	Parent *ProductCategory `xml:"Parent"`
}

// LowestPricedOffer is one offer of GetLowestPricedOffers.
type LowestPricedOffer struct {
	SubCondition        string `xml:"SubCondition"`
	ListingPrice        Money  `xml:"ListingPrice"`
	Shipping            Money  `xml:"Shipping"`
	IsFulfilledByAmazon bool   `xml:"IsFulfilledByAmazon"`
	IsBuyBoxWinner      bool   `xml:"IsBuyBoxWinner"`
	IsFeaturedMerchant  bool   `xml:"IsFeaturedMerchant"`
}

// ProductResult is one per-identifier result element. Status is "Success"
// or the reason the identifier failed, in which case Error is set.
type ProductResult struct {
	Status     string              `xml:"status,attr"`
	ID         string              `xml:"Id,attr"`
	IDType     string              `xml:"IdType,attr"`
	ASIN       string              `xml:"ASIN,attr"`
	SellerSKU  string              `xml:"SellerSKU,attr"`
	Products   []Product           `xml:"Products>Product"`
	Product    *Product            `xml:"Product"`
	Categories []ProductCategory   `xml:"Self"`
	Offers     []LowestPricedOffer `xml:"Offers>Offer"`
	Error      *ResultError        `xml:"Error"`
}

// All returns every product in the result, whichever shape it came in.
func (r ProductResult) All() []Product {
	if r.Product != nil {
		return append([]Product{*r.Product}, r.Products...)
	}
	return r.Products
}

func (p *Products) results(ctx context.Context, action string, params Values) ([]ProductResult, error) {
	resp, err := p.client.Call(ctx, FamilyProducts, action, params)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", action, err)
	}
	return decodeAll[ProductResult](resp, action+"Result")
}

func marketplace(id string) Values {
	return Values{"MarketplaceId": id}
}

// ListMatchingProducts searches the catalog.
func (p *Products) ListMatchingProducts(
	ctx context.Context,
	marketplaceID, query, queryContextID string,
) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("Query", query)
	params.Set("QueryContextId", queryContextID)
	return p.results(ctx, "ListMatchingProducts", params)
}

// GetMatchingProduct fetches products by ASIN.
func (p *Products) GetMatchingProduct(ctx context.Context, marketplaceID string, asins []string) ([]ProductResult, error) {
	return p.results(ctx, "GetMatchingProduct", marketplace(marketplaceID).Merge(Enumerate("ASINList.ASIN", asins)))
}

// GetMatchingProductForID fetches products by any identifier type (ASIN,
// SellerSKU, UPC, EAN, ISBN, JAN). idType is case sensitive.
func (p *Products) GetMatchingProductForID(
	ctx context.Context,
	marketplaceID, idType string,
	ids []string,
) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("IdType", idType)
	params.Merge(Enumerate("IdList.Id", ids))
	return p.results(ctx, "GetMatchingProductForId", params)
}

// GetCompetitivePricingForSKU returns competitive pricing by seller SKU.
func (p *Products) GetCompetitivePricingForSKU(
	ctx context.Context,
	marketplaceID string,
	skus []string,
) ([]ProductResult, error) {
	params := marketplace(marketplaceID).Merge(Enumerate("SellerSKUList.SellerSKU", skus))
	return p.results(ctx, "GetCompetitivePricingForSKU", params)
}

// GetCompetitivePricingForASIN returns competitive pricing by ASIN.
func (p *Products) GetCompetitivePricingForASIN(
	ctx context.Context,
	marketplaceID string,
	asins []string,
) ([]ProductResult, error) {
	return p.results(ctx, "GetCompetitivePricingForASIN", marketplace(marketplaceID).Merge(Enumerate("ASINList.ASIN", asins)))
}

// GetLowestOfferListingsForSKU returns the lowest offers by seller SKU. An
// empty condition means ConditionAny.
func (p *Products) GetLowestOfferListingsForSKU(
	ctx context.Context,
	marketplaceID string,
	skus []string,
	condition string,
	excludeMe bool,
) ([]ProductResult, error) {
	params := offerParams(marketplaceID, condition, ConditionAny, excludeMe)
	params.Merge(Enumerate("SellerSKUList.SellerSKU", skus))
	return p.results(ctx, "GetLowestOfferListingsForSKU", params)
}

// GetLowestOfferListingsForASIN returns the lowest offers by ASIN.
func (p *Products) GetLowestOfferListingsForASIN(
	ctx context.Context,
	marketplaceID string,
	asins []string,
	condition string,
	excludeMe bool,
) ([]ProductResult, error) {
	params := offerParams(marketplaceID, condition, ConditionAny, excludeMe)
	params.Merge(Enumerate("ASINList.ASIN", asins))
	return p.results(ctx, "GetLowestOfferListingsForASIN", params)
}

// GetLowestPricedOffersForSKU returns the lowest priced offers for one SKU.
// An empty condition means ConditionNew.
func (p *Products) GetLowestPricedOffersForSKU(
	ctx context.Context,
	marketplaceID, sku, condition string,
	excludeMe bool,
) ([]ProductResult, error) {
	params := offerParams(marketplaceID, condition, ConditionNew, excludeMe)
	params.Set("SellerSKU", sku)
	return p.results(ctx, "GetLowestPricedOffersForSKU", params)
}

// GetLowestPricedOffersForASIN returns the lowest priced offers for one ASIN.
func (p *Products) GetLowestPricedOffersForASIN(
	ctx context.Context,
	marketplaceID, asin, condition string,
	excludeMe bool,
) ([]ProductResult, error) {
	params := offerParams(marketplaceID, condition, ConditionNew, excludeMe)
	params.Set("ASIN", asin)
	return p.results(ctx, "GetLowestPricedOffersForASIN", params)
}

// GetProductCategoriesForSKU returns the browse categories of a SKU.
func (p *Products) GetProductCategoriesForSKU(ctx context.Context, marketplaceID, sku string) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("SellerSKU", sku)
	return p.results(ctx, "GetProductCategoriesForSKU", params)
}

// GetProductCategoriesForASIN returns the browse categories of an ASIN.
func (p *Products) GetProductCategoriesForASIN(ctx context.Context, marketplaceID, asin string) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("ASIN", asin)
	return p.results(ctx, "GetProductCategoriesForASIN", params)
}

// GetMyPriceForSKU returns the caller's own offers by SKU.
func (p *Products) GetMyPriceForSKU(
	ctx context.Context,
	marketplaceID string,
	skus []string,
	condition string,
) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("ItemCondition", condition)
	params.Merge(Enumerate("SellerSKUList.SellerSKU", skus))
	return p.results(ctx, "GetMyPriceForSKU", params)
}

// GetMyPriceForASIN returns the caller's own offers by ASIN.
func (p *Products) GetMyPriceForASIN(
	ctx context.Context,
	marketplaceID string,
	asins []string,
	condition string,
) ([]ProductResult, error) {
	params := marketplace(marketplaceID)
	params.Set("ItemCondition", condition)
	params.Merge(Enumerate("ASINList.ASIN", asins))
	return p.results(ctx, "GetMyPriceForASIN", params)
}

func offerParams(marketplaceID, condition, defaultCondition string, excludeMe bool) Values {
	if condition == "" {
		condition = defaultCondition
	}
	params := marketplace(marketplaceID)
	params.Set("ItemCondition", condition)
	params.Set("ExcludeMe", excludeMe)
	return params
}

// FeesEstimateRequest is one entry of GetMyFeesEstimate.
type FeesEstimateRequest struct {
	MarketplaceID     string
	IDType            string
	IDValue           string
	IsAmazonFulfilled bool
	Identifier        string
	ListingPrice      float64
	Shipping          float64
	CurrencyCode      string
}

// NewFeesEstimateRequest returns a request for an ASIN with the usual
// defaults: fulfilled by the marketplace, listing price 100.00 USD, free
// shipping.
func NewFeesEstimateRequest(marketplaceID, asin string) FeesEstimateRequest {
	return FeesEstimateRequest{
		MarketplaceID:     marketplaceID,
		IDType:            "ASIN",
		IDValue:           asin,
		IsAmazonFulfilled: true,
		Identifier:        "request-1",
		ListingPrice:      100,
		CurrencyCode:      "USD",
	}
}

// Flatten implements Flattener.
func (r FeesEstimateRequest) Flatten() Values {
	amount := func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
	return Values{
		"MarketplaceId":     r.MarketplaceID,
		"IdType":            r.IDType,
		"IdValue":           r.IDValue,
		"IsAmazonFulfilled": strconv.FormatBool(r.IsAmazonFulfilled),
		"Identifier":        r.Identifier,
		"PriceToEstimateFees.ListingPrice.CurrencyCode": r.CurrencyCode,
		"PriceToEstimateFees.ListingPrice.Amount":       amount(r.ListingPrice),
		"PriceToEstimateFees.Shipping.CurrencyCode":     r.CurrencyCode,
		"PriceToEstimateFees.Shipping.Amount":           amount(r.Shipping),
	}
}

// FeesEstimateResult is the estimate for one request.
type FeesEstimateResult struct {
	Status            string       `xml:"Status"`
	MarketplaceID     string       `xml:"FeesEstimateIdentifier>MarketplaceId"`
	IDType            string       `xml:"FeesEstimateIdentifier>IdType"`
	IDValue           string       `xml:"FeesEstimateIdentifier>IdValue"`
	Identifier        string       `xml:"FeesEstimateIdentifier>SellerInputIdentifier"`
	TotalFeesEstimate Money        `xml:"FeesEstimate>TotalFeesEstimate"`
	Error             *ResultError `xml:"Error"`
}

// FeesEstimateParams flattens requests into
// FeesEstimateRequestList.FeesEstimateRequest.N.Field parameters.
func FeesEstimateParams(requests []FeesEstimateRequest) Values {
	return Encoder{Member: "FeesEstimateRequest"}.Encode("FeesEstimateRequestList", requests)
}

// GetMyFeesEstimate estimates the fees for up to 20 products.
func (p *Products) GetMyFeesEstimate(ctx context.Context, requests []FeesEstimateRequest) ([]FeesEstimateResult, error) {
	var res struct {
		Results []FeesEstimateResult `xml:"FeesEstimateResultList>FeesEstimateResult"`
	}
	if err := callInto(ctx, p.client, FamilyProducts, "GetMyFeesEstimate", FeesEstimateParams(requests), &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}
