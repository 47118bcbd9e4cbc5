package mws_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/mws"
	"github.com/donaldgifford/mws-sync/internal/mws/mwstest"
)

func TestProducts_GetMatchingProductForID(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.Handle("GetMatchingProductForId", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<GetMatchingProductForIdResponse xmlns="http://mws.amazonservices.com/schema/Products/2011-10-01"
    xmlns:ns2="http://mws.amazonservices.com/schema/Products/2011-10-01/default.xsd">
  <GetMatchingProductForIdResult Id="0123456789012" IdType="UPC" status="Success">
    <Products>
      <Product>
        <Identifiers><MarketplaceASIN><MarketplaceId>ATVPDKIKX0DER</MarketplaceId><ASIN>B000TEST01</ASIN></MarketplaceASIN></Identifiers>
        <AttributeSets>
          <ns2:ItemAttributes xml:lang="en-US">
            <ns2:Title>Widget</ns2:Title>
            <ns2:Brand>Acme</ns2:Brand>
          </ns2:ItemAttributes>
        </AttributeSets>
        <SalesRankings><SalesRank><ProductCategoryId>toy</ProductCategoryId><Rank>12</Rank></SalesRank></SalesRankings>
      </Product>
    </Products>
  </GetMatchingProductForIdResult>
  <GetMatchingProductForIdResult Id="999" IdType="UPC" status="ClientError">
    <Error><Type>Sender</Type><Code>InvalidParameterValue</Code><Message>Invalid UPC identifier 999</Message></Error>
  </GetMatchingProductForIdResult>
  <ResponseMetadata><RequestId>r-1</RequestId></ResponseMetadata>
</GetMatchingProductForIdResponse>`))
	})
	products := srv.Client(t).Products()

	results, err := products.GetMatchingProductForID(context.Background(), "ATVPDKIKX0DER", "UPC",
		[]string{"0123456789012", "999"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	ok := results[0]
	assert.Equal(t, "Success", ok.Status)
	assert.Equal(t, "0123456789012", ok.ID)
	require.Len(t, ok.All(), 1)
	p := ok.All()[0]
	assert.Equal(t, "B000TEST01", p.Identifiers.ASIN)
	assert.Equal(t, "Widget", p.Attributes.Title)
	assert.Equal(t, "Acme", p.Attributes.Brand)
	require.Len(t, p.SalesRankings, 1)
	assert.Equal(t, 12, p.SalesRankings[0].Rank)

	bad := results[1]
	require.NotNil(t, bad.Error)
	assert.Equal(t, "InvalidParameterValue", bad.Error.Code)
	assert.Empty(t, bad.All())

	params := srv.Calls("GetMatchingProductForId")[0].Params
	assert.Equal(t, "UPC", params.Get("IdType"))
	assert.Equal(t, "0123456789012", params.Get("IdList.Id.1"))
	assert.Equal(t, "999", params.Get("IdList.Id.2"))
	assert.Equal(t, "ATVPDKIKX0DER", params.Get("MarketplaceId"))
}

func TestProducts_OfferDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		action        string
		call          func(*mws.Products) error
		wantCondition string
		wantExcludeMe string
	}{
		{
			name:   "lowest offer listings default to Any",
			action: "GetLowestOfferListingsForASIN",
			call: func(p *mws.Products) error {
				_, err := p.GetLowestOfferListingsForASIN(context.Background(), "M", []string{"A"}, "", false)
				return err
			},
			wantCondition: "Any",
			wantExcludeMe: "false",
		},
		{
			name:   "lowest priced offers default to New",
			action: "GetLowestPricedOffersForSKU",
			call: func(p *mws.Products) error {
				_, err := p.GetLowestPricedOffersForSKU(context.Background(), "M", "SKU", "", true)
				return err
			},
			wantCondition: "New",
			wantExcludeMe: "true",
		},
		{
			name:   "explicit condition kept",
			action: "GetLowestOfferListingsForSKU",
			call: func(p *mws.Products) error {
				_, err := p.GetLowestOfferListingsForSKU(context.Background(), "M", []string{"S"}, "Used", false)
				return err
			},
			wantCondition: "Used",
			wantExcludeMe: "false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := mwstest.NewServer(t)
			srv.Handle(tt.action, func(w http.ResponseWriter, _ *http.Request) {
				mwstest.WriteResult(w, tt.action, "")
			})

			require.NoError(t, tt.call(srv.Client(t).Products()))

			params := srv.Calls(tt.action)[0].Params
			assert.Equal(t, tt.wantCondition, params.Get("ItemCondition"))
			assert.Equal(t, tt.wantExcludeMe, params.Get("ExcludeMe"))
		})
	}
}

func TestFeesEstimateParams(t *testing.T) {
	t.Parallel()

	req := mws.NewFeesEstimateRequest("ATVPDKIKX0DER", "B000TEST01")
	second := req
	second.IDValue = "B000TEST02"
	second.Identifier = "request-2"
	second.ListingPrice = 19.5
	second.Shipping = 4

	got := mws.FeesEstimateParams([]mws.FeesEstimateRequest{req, second})

	const p1 = "FeesEstimateRequestList.FeesEstimateRequest.1."
	const p2 = "FeesEstimateRequestList.FeesEstimateRequest.2."
	assert.Equal(t, "ATVPDKIKX0DER", got[p1+"MarketplaceId"])
	assert.Equal(t, "ASIN", got[p1+"IdType"])
	assert.Equal(t, "B000TEST01", got[p1+"IdValue"])
	assert.Equal(t, "true", got[p1+"IsAmazonFulfilled"])
	assert.Equal(t, "request-1", got[p1+"Identifier"])
	assert.Equal(t, "100.00", got[p1+"PriceToEstimateFees.ListingPrice.Amount"])
	assert.Equal(t, "USD", got[p1+"PriceToEstimateFees.ListingPrice.CurrencyCode"])
	assert.Equal(t, "0.00", got[p1+"PriceToEstimateFees.Shipping.Amount"])
	assert.Equal(t, "B000TEST02", got[p2+"IdValue"])
	assert.Equal(t, "19.50", got[p2+"PriceToEstimateFees.ListingPrice.Amount"])
	assert.Equal(t, "4.00", got[p2+"PriceToEstimateFees.Shipping.Amount"])
	assert.Len(t, got, 18)
}

func TestProducts_GetMyFeesEstimate(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.Handle("GetMyFeesEstimate", func(w http.ResponseWriter, _ *http.Request) {
		mwstest.WriteResult(w, "GetMyFeesEstimate", `
<FeesEstimateResultList>
  <FeesEstimateResult>
    <Status>Success</Status>
    <FeesEstimateIdentifier>
      <MarketplaceId>ATVPDKIKX0DER</MarketplaceId>
      <IdType>ASIN</IdType>
      <IdValue>B000TEST01</IdValue>
      <SellerInputIdentifier>request-1</SellerInputIdentifier>
    </FeesEstimateIdentifier>
    <FeesEstimate>
      <TotalFeesEstimate><CurrencyCode>USD</CurrencyCode><Amount>18.32</Amount></TotalFeesEstimate>
    </FeesEstimate>
  </FeesEstimateResult>
</FeesEstimateResultList>`)
	})

	got, err := srv.Client(t).Products().GetMyFeesEstimate(context.Background(),
		[]mws.FeesEstimateRequest{mws.NewFeesEstimateRequest("ATVPDKIKX0DER", "B000TEST01")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Success", got[0].Status)
	assert.Equal(t, "request-1", got[0].Identifier)
	assert.Equal(t, "18.32", got[0].TotalFeesEstimate.Amount)
	assert.Nil(t, got[0].Error)
}
