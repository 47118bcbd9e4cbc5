package mws

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Orders groups the order operations.
type Orders struct {
	client *Client
}

// Orders returns the order operations bound to c.
func (c *Client) Orders() *Orders {
	return &Orders{client: c}
}

// Money is an amount with its currency.
type Money struct {
	CurrencyCode string `xml:"CurrencyCode"`
	Amount       string `xml:"Amount"`
}

// OrderAddress is the shipping address on an order.
type OrderAddress struct {
	Name          string `xml:"Name"`
	AddressLine1  string `xml:"AddressLine1"`
	AddressLine2  string `xml:"AddressLine2"`
	AddressLine3  string `xml:"AddressLine3"`
	City          string `xml:"City"`
	County        string `xml:"County"`
	StateOrRegion string `xml:"StateOrRegion"`
	PostalCode    string `xml:"PostalCode"`
	CountryCode   string `xml:"CountryCode"`
	Phone         string `xml:"Phone"`
}

// State returns StateOrRegion normalized to a two-letter US state code when
// it names one, otherwise unchanged.
func (a OrderAddress) State() string {
	return NormalizeState(a.StateOrRegion)
}

// Order is one order as returned by ListOrders and GetOrder.
type Order struct {
	AmazonOrderID                string       `xml:"AmazonOrderId"`
	SellerOrderID                string       `xml:"SellerOrderId"`
	PurchaseDate                 Timestamp    `xml:"PurchaseDate"`
	LastUpdateDate               Timestamp    `xml:"LastUpdateDate"`
	OrderStatus                  string       `xml:"OrderStatus"`
	FulfillmentChannel           string       `xml:"FulfillmentChannel"`
	SalesChannel                 string       `xml:"SalesChannel"`
	ShipServiceLevel             string       `xml:"ShipServiceLevel"`
	ShippingAddress              OrderAddress `xml:"ShippingAddress"`
	OrderTotal                   Money        `xml:"OrderTotal"`
	NumberOfItemsShipped         int          `xml:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped       int          `xml:"NumberOfItemsUnshipped"`
	PaymentMethod                string       `xml:"PaymentMethod"`
	MarketplaceID                string       `xml:"MarketplaceId"`
	BuyerEmail                   string       `xml:"BuyerEmail"`
	BuyerName                    string       `xml:"BuyerName"`
	ShipmentServiceLevelCategory string       `xml:"ShipmentServiceLevelCategory"`
	OrderType                    string       `xml:"OrderType"`
	EarliestShipDate             Timestamp    `xml:"EarliestShipDate"`
	LatestShipDate               Timestamp    `xml:"LatestShipDate"`
	IsBusinessOrder              bool         `xml:"IsBusinessOrder"`
	IsPrime                      bool         `xml:"IsPrime"`
	IsPremiumOrder               bool         `xml:"IsPremiumOrder"`
}

// OrderList is one page of orders.
type OrderList struct {
	NextToken         string    `xml:"NextToken"`
	CreatedBefore     Timestamp `xml:"CreatedBefore"`
	LastUpdatedBefore Timestamp `xml:"LastUpdatedBefore"`
	Orders            []Order   `xml:"Orders>Order"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ASIN              string `xml:"ASIN"`
	SellerSKU         string `xml:"SellerSKU"`
	OrderItemID       string `xml:"OrderItemId"`
	Title             string `xml:"Title"`
	QuantityOrdered   int    `xml:"QuantityOrdered"`
	QuantityShipped   int    `xml:"QuantityShipped"`
	ItemPrice         Money  `xml:"ItemPrice"`
	ShippingPrice     Money  `xml:"ShippingPrice"`
	ItemTax           Money  `xml:"ItemTax"`
	PromotionDiscount Money  `xml:"PromotionDiscount"`
}

// OrderItemList is one page of order items.
type OrderItemList struct {
	NextToken     string      `xml:"NextToken"`
	AmazonOrderID string      `xml:"AmazonOrderId"`
	Items         []OrderItem `xml:"OrderItems>OrderItem"`
}

// ListOrdersInput filters ListOrders. MarketplaceIDs is required by the
// service.
type ListOrdersInput struct {
	MarketplaceIDs      []string
	CreatedAfter        time.Time
	CreatedBefore       time.Time
	LastUpdatedAfter    time.Time
	LastUpdatedBefore   time.Time
	OrderStatuses       []string
	FulfillmentChannels []string
	PaymentMethods      []string
	BuyerEmail          string
	SellerOrderID       string
	MaxResultsPerPage   int
}

// ListOrders lists orders matching in.
func (o *Orders) ListOrders(ctx context.Context, in ListOrdersInput) (*OrderList, error) {
	params := Values{}
	params.Set("CreatedAfter", in.CreatedAfter)
	params.Set("CreatedBefore", in.CreatedBefore)
	params.Set("LastUpdatedAfter", in.LastUpdatedAfter)
	params.Set("LastUpdatedBefore", in.LastUpdatedBefore)
	params.Set("BuyerEmail", in.BuyerEmail)
	params.Set("SellerOrderId", in.SellerOrderID)
	if in.MaxResultsPerPage > 0 {
		params.Set("MaxResultsPerPage", in.MaxResultsPerPage)
	}
	params.Merge(Enumerate("OrderStatus.Status", in.OrderStatuses))
	params.Merge(Enumerate("MarketplaceId.Id", in.MarketplaceIDs))
	params.Merge(Enumerate("FulfillmentChannel.Channel", in.FulfillmentChannels))
	params.Merge(Enumerate("PaymentMethod.Method", in.PaymentMethods))

	var list OrderList
	if err := callInto(ctx, o.client, FamilyOrders, "ListOrders", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListOrdersByNextToken fetches the next page of orders.
func (o *Orders) ListOrdersByNextToken(ctx context.Context, token string) (*OrderList, error) {
	var list OrderList
	if err := callInto(ctx, o.client, FamilyOrders, "ListOrdersByNextToken", Values{"NextToken": token}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetOrder fetches orders by id.
func (o *Orders) GetOrder(ctx context.Context, orderIDs []string) ([]Order, error) {
	var res struct {
		Orders []Order `xml:"Orders>Order"`
	}
	if err := callInto(ctx, o.client, FamilyOrders, "GetOrder", Enumerate("AmazonOrderId.Id", orderIDs), &res); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

// ListOrderItems lists the items of one order.
func (o *Orders) ListOrderItems(ctx context.Context, orderID string) (*OrderItemList, error) {
	var list OrderItemList
	if err := callInto(ctx, o.client, FamilyOrders, "ListOrderItems", Values{"AmazonOrderId": orderID}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListOrderItemsByNextToken fetches the next page of order items.
func (o *Orders) ListOrderItemsByNextToken(ctx context.Context, token string) (*OrderItemList, error) {
	var list OrderItemList
	err := callInto(ctx, o.client, FamilyOrders, "ListOrderItemsByNextToken", Values{"NextToken": token}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

var (
	nonWordRe   = regexp.MustCompile(`\W`)
	stateByName = func() map[string]string {
		m := make(map[string]string, len(usStates))
		for code, name := range usStates {
			m[squash(name)] = code
		}
		return m
	}()
)

func squash(s string) string {
	return strings.ToLower(nonWordRe.ReplaceAllString(s, ""))
}

// NormalizeState maps a customer-supplied US state ("n.y.", "New York",
// "ny") to its upper-case code. Anything else is returned unchanged.
func NormalizeState(s string) string {
	if s == "" {
		return ""
	}
	sq := squash(s)
	if _, ok := usStates[strings.ToUpper(sq)]; ok {
		return strings.ToUpper(sq)
	}
	if code, ok := stateByName[sq]; ok {
		return code
	}
	return s
}
