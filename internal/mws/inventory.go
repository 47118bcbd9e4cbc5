package mws

import (
	"context"
	"net/http"
	"time"
)

// Inventory groups the fulfillment inventory operations.
type Inventory struct {
	client *Client
}

// Inventory returns the inventory operations bound to c.
func (c *Client) Inventory() *Inventory {
	return &Inventory{client: c}
}

// InventorySupply is the supply of one SKU.
type InventorySupply struct {
	SellerSKU             string `xml:"SellerSKU"`
	FNSKU                 string `xml:"FNSKU"`
	ASIN                  string `xml:"ASIN"`
	Condition             string `xml:"Condition"`
	TotalSupplyQuantity   int    `xml:"TotalSupplyQuantity"`
	InStockSupplyQuantity int    `xml:"InStockSupplyQuantity"`
	EarliestAvailability  string `xml:"EarliestAvailability>TimepointType"`
}

// InventorySupplyList is one page of ListInventorySupply.
type InventorySupplyList struct {
	NextToken string            `xml:"NextToken"`
	Supply    []InventorySupply `xml:"InventorySupplyList>member"`
}

// ListInventorySupplyInput filters ListInventorySupply. An empty
// ResponseGroup means "Basic".
type ListInventorySupplyInput struct {
	SellerSKUs         []string
	QueryStartDateTime time.Time
	ResponseGroup      string
}

// ListInventorySupply returns available inventory for SKUs, or for
// everything changed since QueryStartDateTime.
func (i *Inventory) ListInventorySupply(
	ctx context.Context,
	in ListInventorySupplyInput,
) (*InventorySupplyList, error) {
	group := in.ResponseGroup
	if group == "" {
		group = "Basic"
	}
	params := Values{"ResponseGroup": group}
	params.Set("QueryStartDateTime", in.QueryStartDateTime)
	params.Merge(Members("SellerSkus", in.SellerSKUs))

	var list InventorySupplyList
	err := callInto(ctx, i.client, FamilyInventory, "ListInventorySupply", params, &list, WithMethod(http.MethodPost))
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListInventorySupplyByNextToken fetches the next page.
func (i *Inventory) ListInventorySupplyByNextToken(ctx context.Context, token string) (*InventorySupplyList, error) {
	var list InventorySupplyList
	err := callInto(ctx, i.client, FamilyInventory, "ListInventorySupplyByNextToken",
		Values{"NextToken": token}, &list, WithMethod(http.MethodPost))
	if err != nil {
		return nil, err
	}
	return &list, nil
}
