package mws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultMarketplaceID is the US marketplace, used when an order leaves
// MarketplaceID empty.
const DefaultMarketplaceID = "ATVPDKIKX0DER"

// Currency is an amount in an ISO 4217 currency. A zero Value is omitted.
type Currency struct {
	Value        float64 `validate:"gte=0"`
	CurrencyCode string  `validate:"omitempty,len=3"`
}

// Flatten implements Flattener.
func (c Currency) Flatten() Values {
	if c.Value == 0 {
		return nil
	}
	code := c.CurrencyCode
	if code == "" {
		code = "USD"
	}
	return Values{
		"Value":        strconv.FormatFloat(c.Value, 'f', -1, 64),
		"CurrencyCode": code,
	}
}

// Address is the destination of a fulfillment order. Limits are in
// characters.
type Address struct {
	Name                string `mws:"Name" validate:"max=50"`
	Line1               string `mws:"Line1" validate:"max=60"`
	Line2               string `mws:"Line2" validate:"max=60"`
	Line3               string `mws:"Line3" validate:"max=60"`
	DistrictOrCounty    string `mws:"DistrictOrCounty" validate:"max=150"`
	City                string `mws:"City" validate:"max=50"`
	StateOrProvinceCode string `mws:"StateOrProvinceCode" validate:"max=150"`
	CountryCode         string `mws:"CountryCode"`
	PostalCode          string `mws:"PostalCode" validate:"max=20"`
	PhoneNumber         string `mws:"PhoneNumber" validate:"max=20"`
}

// Flatten implements Flattener.
func (a Address) Flatten() Values {
	return Values{
		"Name":                a.Name,
		"Line1":               a.Line1,
		"Line2":               a.Line2,
		"Line3":               a.Line3,
		"DistrictOrCounty":    a.DistrictOrCounty,
		"City":                a.City,
		"StateOrProvinceCode": a.StateOrProvinceCode,
		"CountryCode":         a.CountryCode,
		"PostalCode":          a.PostalCode,
		"PhoneNumber":         a.PhoneNumber,
	}
}

// FulfillmentOrderItem is one line of a fulfillment order.
type FulfillmentOrderItem struct {
	SellerSKU                    string   `mws:"SellerSKU" validate:"max=50"`
	SellerFulfillmentOrderItemID string   `mws:"SellerFulfillmentOrderItemId" validate:"max=50"`
	Quantity                     int      `mws:"Quantity" validate:"gte=0"`
	GiftMessage                  string   `mws:"GiftMessage" validate:"max=512"`
	DisplayableComment           string   `mws:"DisplayableComment" validate:"max=250"`
	FulfillmentNetworkSKU        string   `mws:"FulfillmentNetworkSKU"`
	PerUnitDeclaredValue         Currency `mws:"PerUnitDeclaredValue"`
	PerUnitPrice                 Currency `mws:"PerUnitPrice"`
	PerUnitTax                   Currency `mws:"PerUnitTax"`
}

// Flatten implements Flattener.
func (i FulfillmentOrderItem) Flatten() Values {
	out := Values{
		"SellerSKU":                    i.SellerSKU,
		"SellerFulfillmentOrderItemId": i.SellerFulfillmentOrderItemID,
		"GiftMessage":                  i.GiftMessage,
		"DisplayableComment":           i.DisplayableComment,
		"FulfillmentNetworkSKU":        i.FulfillmentNetworkSKU,
	}
	if i.Quantity > 0 {
		out["Quantity"] = strconv.Itoa(i.Quantity)
	}
	out.Set("PerUnitDeclaredValue", i.PerUnitDeclaredValue)
	out.Set("PerUnitPrice", i.PerUnitPrice)
	out.Set("PerUnitTax", i.PerUnitTax)
	return out
}

// CODSettings are the cash-on-delivery charges of an order. Nothing is sent
// unless IsCODRequired is set.
type CODSettings struct {
	IsCODRequired     bool     `mws:"IsCODRequired"`
	CODCharge         Currency `mws:"CODCharge"`
	CODChargeTax      Currency `mws:"CODChargeTax"`
	ShippingCharge    Currency `mws:"ShippingCharge"`
	ShippingChargeTax Currency `mws:"ShippingChargeTax"`
}

// Flatten implements Flattener.
func (c CODSettings) Flatten() Values {
	if !c.IsCODRequired {
		return nil
	}
	out := Values{"IsCODRequired": "true"}
	out.Set("CODCharge", c.CODCharge)
	out.Set("CODChargeTax", c.CODChargeTax)
	out.Set("ShippingCharge", c.ShippingCharge)
	out.Set("ShippingChargeTax", c.ShippingChargeTax)
	return out
}

// DeliveryWindow bounds a ScheduledDelivery order. It is sent only when both
// ends are set.
type DeliveryWindow struct {
	StartDateTime time.Time `mws:"StartDateTime"`
	EndDateTime   time.Time `mws:"EndDateTime" validate:"omitempty,gtfield=StartDateTime"`
}

// Flatten implements Flattener.
func (w DeliveryWindow) Flatten() Values {
	if w.StartDateTime.IsZero() || w.EndDateTime.IsZero() {
		return nil
	}
	return Values{
		"StartDateTime": FormatTime(w.StartDateTime),
		"EndDateTime":   FormatTime(w.EndDateTime),
	}
}

// Fulfillment actions, speeds and policies.
const (
	ActionShip = "Ship"
	ActionHold = "Hold"

	SpeedStandard  = "Standard"
	SpeedExpedited = "Expedited"
	SpeedPriority  = "Priority"
	SpeedScheduled = "ScheduledDelivery"

	PolicyFillOrKill       = "FillOrKill"
	PolicyFillAll          = "FillAll"
	PolicyFillAllAvailable = "FillAllAvailable"
)

// FulfillmentOrder is the payload of CreateFulfillmentOrder.
type FulfillmentOrder struct {
	MarketplaceID            string                 `mws:"MarketplaceId"`
	SellerFulfillmentOrderID string                 `mws:"SellerFulfillmentOrderId" validate:"required,max=40"`
	FulfillmentAction        string                 `mws:"FulfillmentAction" validate:"omitempty,oneof=Ship Hold"`
	DisplayableOrderID       string                 `mws:"DisplayableOrderId" validate:"min=1,max=40"`
	DisplayableOrderDateTime time.Time              `mws:"DisplayableOrderDateTime"`
	DisplayableOrderComment  string                 `mws:"DisplayableOrderComment" validate:"max=1000"`
	ShippingSpeedCategory    string                 `mws:"ShippingSpeedCategory" validate:"oneof=Standard Expedited Priority ScheduledDelivery"`
	DestinationAddress       Address                `mws:"DestinationAddress"`
	FulfillmentPolicy        string                 `mws:"FulfillmentPolicy" validate:"omitempty,oneof=FillOrKill FillAll FillAllAvailable"`
	NotificationEmails       []string               `mws:"NotificationEmailList" validate:"dive,max=60"`
	CODSettings              CODSettings            `mws:"CODSettings"`
	Items                    []FulfillmentOrderItem `mws:"Items" validate:"dive"`
	DeliveryWindow           DeliveryWindow         `mws:"DeliveryWindow"`
}

// NewFulfillmentOrder returns an order with the service defaults: US
// marketplace, Ship, displayable id "1", Standard speed, FillOrKill.
func NewFulfillmentOrder(sellerOrderID string) *FulfillmentOrder {
	return &FulfillmentOrder{
		MarketplaceID:            DefaultMarketplaceID,
		SellerFulfillmentOrderID: sellerOrderID,
		FulfillmentAction:        ActionShip,
		DisplayableOrderID:       "1",
		ShippingSpeedCategory:    SpeedStandard,
		FulfillmentPolicy:        PolicyFillOrKill,
	}
}

// Flatten implements Flattener. Lists use the Key.member.N form.
func (o *FulfillmentOrder) Flatten() Values {
	marketplaceID := o.MarketplaceID
	if marketplaceID == "" {
		marketplaceID = DefaultMarketplaceID
	}
	out := Values{}.Merge(Values{
		"MarketplaceId":            marketplaceID,
		"SellerFulfillmentOrderId": o.SellerFulfillmentOrderID,
		"FulfillmentAction":        o.FulfillmentAction,
		"DisplayableOrderId":       o.DisplayableOrderID,
		"DisplayableOrderComment":  o.DisplayableOrderComment,
		"ShippingSpeedCategory":    o.ShippingSpeedCategory,
		"FulfillmentPolicy":        o.FulfillmentPolicy,
	})
	out.Set("DisplayableOrderDateTime", o.DisplayableOrderDateTime)
	out.Set("DestinationAddress", o.DestinationAddress)
	out.Set("CODSettings", o.CODSettings)
	out.Set("DeliveryWindow", o.DeliveryWindow)
	out.Merge(Members("NotificationEmailList", o.NotificationEmails))
	out.Merge(Members("Items", o.Items))
	return out
}

// Validate checks every field constraint and returns the violations joined,
// each a *ValidationError.
func (o *FulfillmentOrder) Validate() error {
	return validateStruct(o)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name, _, _ := strings.Cut(f.Tag.Get("mws"), ","); name != "" {
				return name
			}
			return f.Name
		})
	})
	return validate
}

func validateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating %T: %w", v, err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		errs = append(errs, &ValidationError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return errors.Join(errs...)
}

// OutboundShipments groups the outbound fulfillment operations.
type OutboundShipments struct {
	client *Client
}

// OutboundShipments returns the outbound fulfillment operations bound to c.
func (c *Client) OutboundShipments() *OutboundShipments {
	return &OutboundShipments{client: c}
}

// CreateFulfillmentOrder validates order and submits it. Validation
// failures are returned before any request is sent.
func (s *OutboundShipments) CreateFulfillmentOrder(ctx context.Context, order *FulfillmentOrder) (*Response, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Call(ctx, FamilyOutboundShipments, "CreateFulfillmentOrder", order.Flatten(),
		WithMethod(http.MethodPost))
	if err != nil {
		return nil, fmt.Errorf("creating fulfillment order %s: %w", order.SellerFulfillmentOrderID, err)
	}
	return resp, nil
}
