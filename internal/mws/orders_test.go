package mws_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/mws"
	"github.com/donaldgifford/mws-sync/internal/mws/mwstest"
)

const orderXML = `<Order>
  <AmazonOrderId>902-3159896-1390916</AmazonOrderId>
  <PurchaseDate>2026-02-01T18:12:21Z</PurchaseDate>
  <LastUpdateDate>2026-02-02T01:00:00Z</LastUpdateDate>
  <OrderStatus>Unshipped</OrderStatus>
  <FulfillmentChannel>MFN</FulfillmentChannel>
  <ShippingAddress>
    <Name>Pat Doe</Name>
    <City>Albany</City>
    <StateOrRegion>n.y.</StateOrRegion>
    <PostalCode>12207</PostalCode>
    <CountryCode>US</CountryCode>
  </ShippingAddress>
  <OrderTotal><CurrencyCode>USD</CurrencyCode><Amount>25.00</Amount></OrderTotal>
  <NumberOfItemsUnshipped>2</NumberOfItemsUnshipped>
  <MarketplaceId>ATVPDKIKX0DER</MarketplaceId>
  <IsPrime>true</IsPrime>
</Order>`

func TestOrders_ListOrders(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.Handle("ListOrders", func(w http.ResponseWriter, _ *http.Request) {
		mwstest.WriteResult(w, "ListOrders",
			`<NextToken>next-1</NextToken><CreatedBefore>2026-02-03T00:00:00Z</CreatedBefore>`+
				`<Orders>`+orderXML+`</Orders>`)
	})
	orders := srv.Client(t).Orders()

	list, err := orders.ListOrders(context.Background(), mws.ListOrdersInput{
		MarketplaceIDs:    []string{"ATVPDKIKX0DER"},
		CreatedAfter:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		OrderStatuses:     []string{"Unshipped", "PartiallyShipped"},
		MaxResultsPerPage: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "next-1", list.NextToken)
	require.Len(t, list.Orders, 1)

	o := list.Orders[0]
	assert.Equal(t, "902-3159896-1390916", o.AmazonOrderID)
	assert.Equal(t, "Unshipped", o.OrderStatus)
	assert.Equal(t, "25.00", o.OrderTotal.Amount)
	assert.Equal(t, 2, o.NumberOfItemsUnshipped)
	assert.True(t, o.IsPrime)
	assert.Equal(t, time.Date(2026, 2, 1, 18, 12, 21, 0, time.UTC), o.PurchaseDate.UTC())
	assert.Equal(t, "NY", o.ShippingAddress.State())

	call := srv.Calls("ListOrders")[0]
	assert.Equal(t, "/Orders/2013-09-01", call.Path)
	assert.Equal(t, "ATVPDKIKX0DER", call.Params.Get("MarketplaceId.Id.1"))
	assert.Equal(t, "Unshipped", call.Params.Get("OrderStatus.Status.1"))
	assert.Equal(t, "PartiallyShipped", call.Params.Get("OrderStatus.Status.2"))
	assert.Equal(t, "2026-02-01T00:00:00Z", call.Params.Get("CreatedAfter"))
	assert.Equal(t, "50", call.Params.Get("MaxResultsPerPage"))
	assert.False(t, call.Params.Has("BuyerEmail"))
}

func TestOrders_ByNextTokenAndItems(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.Handle("ListOrdersByNextToken", func(w http.ResponseWriter, _ *http.Request) {
		mwstest.WriteResult(w, "ListOrdersByNextToken", `<Orders>`+orderXML+orderXML+`</Orders>`)
	})
	srv.Handle("ListOrderItems", func(w http.ResponseWriter, _ *http.Request) {
		mwstest.WriteResult(w, "ListOrderItems", `
<AmazonOrderId>902-3159896-1390916</AmazonOrderId>
<OrderItems>
  <OrderItem>
    <ASIN>B00EXAMPLE</ASIN>
    <SellerSKU>SKU-1</SellerSKU>
    <OrderItemId>68828574383266</OrderItemId>
    <QuantityOrdered>2</QuantityOrdered>
    <ItemPrice><CurrencyCode>USD</CurrencyCode><Amount>20.00</Amount></ItemPrice>
  </OrderItem>
</OrderItems>`)
	})
	orders := srv.Client(t).Orders()
	ctx := context.Background()

	list, err := orders.ListOrdersByNextToken(ctx, "next-1")
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)
	assert.Empty(t, list.NextToken)
	assert.Equal(t, "next-1", srv.Calls("ListOrdersByNextToken")[0].Params.Get("NextToken"))

	items, err := orders.ListOrderItems(ctx, "902-3159896-1390916")
	require.NoError(t, err)
	assert.Equal(t, "902-3159896-1390916", items.AmazonOrderID)
	require.Len(t, items.Items, 1)
	assert.Equal(t, "SKU-1", items.Items[0].SellerSKU)
	assert.Equal(t, 2, items.Items[0].QuantityOrdered)
	assert.Equal(t, "20.00", items.Items[0].ItemPrice.Amount)
}

func TestOrders_GetOrder(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.Handle("GetOrder", func(w http.ResponseWriter, _ *http.Request) {
		mwstest.WriteResult(w, "GetOrder", `<Orders>`+orderXML+`</Orders>`)
	})

	got, err := srv.Client(t).Orders().GetOrder(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	params := srv.Calls("GetOrder")[0].Params
	assert.Equal(t, "a", params.Get("AmazonOrderId.Id.1"))
	assert.Equal(t, "b", params.Get("AmazonOrderId.Id.2"))
}

func TestNormalizeState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "NY", want: "NY"},
		{in: "ny", want: "NY"},
		{in: "n.y.", want: "NY"},
		{in: "New York", want: "NY"},
		{in: "new-york", want: "NY"},
		{in: "District of Columbia", want: "DC"},
		{in: "Ontario", want: "Ontario"},
		{in: "ZZ", want: "ZZ"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mws.NormalizeState(tt.in))
		})
	}
}
