package mws

import (
	"context"
	"time"
)

// InboundShipments groups the inbound fulfillment operations.
type InboundShipments struct {
	client *Client
}

// InboundShipments returns the inbound shipment operations bound to c.
func (c *Client) InboundShipments() *InboundShipments {
	return &InboundShipments{client: c}
}

// InboundShipment is a shipment headed to a fulfillment center.
type InboundShipment struct {
	ShipmentID                     string `xml:"ShipmentId"`
	ShipmentName                   string `xml:"ShipmentName"`
	ShipmentStatus                 string `xml:"ShipmentStatus"`
	DestinationFulfillmentCenterID string `xml:"DestinationFulfillmentCenterId"`
	LabelPrepType                  string `xml:"LabelPrepType"`
	AreCasesRequired               bool   `xml:"AreCasesRequired"`
}

// InboundShipmentList is one page of shipments.
type InboundShipmentList struct {
	NextToken string            `xml:"NextToken"`
	Shipments []InboundShipment `xml:"ShipmentData>member"`
}

// InboundShipmentItem is one SKU in a shipment.
type InboundShipmentItem struct {
	ShipmentID            string `xml:"ShipmentId"`
	SellerSKU             string `xml:"SellerSKU"`
	FulfillmentNetworkSKU string `xml:"FulfillmentNetworkSKU"`
	QuantityShipped       int    `xml:"QuantityShipped"`
	QuantityReceived      int    `xml:"QuantityReceived"`
	QuantityInCase        int    `xml:"QuantityInCase"`
}

// InboundShipmentItemList is one page of shipment items.
type InboundShipmentItemList struct {
	NextToken string                `xml:"NextToken"`
	Items     []InboundShipmentItem `xml:"ItemData>member"`
}

// ASINPrepInstructions is the prep guidance for one ASIN.
type ASINPrepInstructions struct {
	ASIN               string   `xml:"ASIN"`
	BarcodeInstruction string   `xml:"BarcodeInstruction"`
	PrepGuidance       string   `xml:"PrepGuidance"`
	PrepInstructions   []string `xml:"PrepInstructionList>PrepInstruction"`
}

// InvalidASIN is an ASIN the service could not give guidance for.
type InvalidASIN struct {
	ASIN        string `xml:"ASIN"`
	ErrorReason string `xml:"ErrorReason"`
}

// PrepInstructions is the result of GetPrepInstructionsForASIN.
type PrepInstructions struct {
	Instructions []ASINPrepInstructions `xml:"ASINPrepInstructionsList>ASINPrepInstructions"`
	Invalid      []InvalidASIN          `xml:"InvalidASINList>InvalidASIN"`
}

// ListInboundShipmentsInput filters ListInboundShipments.
type ListInboundShipmentsInput struct {
	ShipmentStatuses  []string
	ShipmentIDs       []string
	LastUpdatedAfter  time.Time
	LastUpdatedBefore time.Time
}

// ListInboundShipments lists shipments matching in.
func (s *InboundShipments) ListInboundShipments(
	ctx context.Context,
	in ListInboundShipmentsInput,
) (*InboundShipmentList, error) {
	params := Values{}
	params.Set("LastUpdatedAfter", in.LastUpdatedAfter)
	params.Set("LastUpdatedBefore", in.LastUpdatedBefore)
	params.Merge(Members("ShipmentStatusList", in.ShipmentStatuses))
	params.Merge(Members("ShipmentIdList", in.ShipmentIDs))

	var list InboundShipmentList
	if err := callInto(ctx, s.client, FamilyInboundShipments, "ListInboundShipments", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListInboundShipmentsByNextToken fetches the next page of shipments.
func (s *InboundShipments) ListInboundShipmentsByNextToken(
	ctx context.Context,
	token string,
) (*InboundShipmentList, error) {
	var list InboundShipmentList
	err := callInto(ctx, s.client, FamilyInboundShipments, "ListInboundShipmentsByNextToken",
		Values{"NextToken": token}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListInboundShipmentItems lists the items of one shipment.
func (s *InboundShipments) ListInboundShipmentItems(
	ctx context.Context,
	shipmentID string,
	lastUpdatedAfter, lastUpdatedBefore time.Time,
) (*InboundShipmentItemList, error) {
	params := Values{"ShipmentId": shipmentID}
	params.Set("LastUpdatedAfter", lastUpdatedAfter)
	params.Set("LastUpdatedBefore", lastUpdatedBefore)

	var list InboundShipmentItemList
	if err := callInto(ctx, s.client, FamilyInboundShipments, "ListInboundShipmentItems", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListInboundShipmentItemsByNextToken fetches the next page of items.
func (s *InboundShipments) ListInboundShipmentItemsByNextToken(
	ctx context.Context,
	token string,
) (*InboundShipmentItemList, error) {
	var list InboundShipmentItemList
	err := callInto(ctx, s.client, FamilyInboundShipments, "ListInboundShipmentItemsByNextToken",
		Values{"NextToken": token}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetPrepInstructionsForASIN returns labeling and prep guidance for asins
// shipped to shipToCountry (ISO 3166 alpha-2).
func (s *InboundShipments) GetPrepInstructionsForASIN(
	ctx context.Context,
	asins []string,
	shipToCountry string,
) (*PrepInstructions, error) {
	params := Values{"ShipToCountryCode": shipToCountry}
	params.Merge(Enumerate("ASINList.Id", asins))

	var res PrepInstructions
	if err := callInto(ctx, s.client, FamilyInboundShipments, "GetPrepInstructionsForASIN", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
