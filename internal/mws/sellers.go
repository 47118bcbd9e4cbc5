package mws

import "context"

// Sellers groups the seller account operations.
type Sellers struct {
	client *Client
}

// Sellers returns the seller operations bound to c.
func (c *Client) Sellers() *Sellers {
	return &Sellers{client: c}
}

// Marketplace describes a marketplace the seller can sell in.
type Marketplace struct {
	MarketplaceID       string `xml:"MarketplaceId"`
	Name                string `xml:"Name"`
	DefaultCountryCode  string `xml:"DefaultCountryCode"`
	DefaultCurrencyCode string `xml:"DefaultCurrencyCode"`
	DefaultLanguageCode string `xml:"DefaultLanguageCode"`
	DomainName          string `xml:"DomainName"`
}

// Participation is the seller's standing in one marketplace.
type Participation struct {
	MarketplaceID              string `xml:"MarketplaceId"`
	SellerID                   string `xml:"SellerId"`
	HasSellerSuspendedListings string `xml:"HasSellerSuspendedListings"`
}

// MarketplaceParticipations is one page of ListMarketplaceParticipations.
type MarketplaceParticipations struct {
	NextToken      string          `xml:"NextToken"`
	Participations []Participation `xml:"ListParticipations>Participation"`
	Marketplaces   []Marketplace   `xml:"ListMarketplaces>Marketplace"`
}

// ListMarketplaceParticipations lists the marketplaces where the account is
// active.
func (s *Sellers) ListMarketplaceParticipations(ctx context.Context) (*MarketplaceParticipations, error) {
	var res MarketplaceParticipations
	if err := callInto(ctx, s.client, FamilySellers, "ListMarketplaceParticipations", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListMarketplaceParticipationsByNextToken fetches the next page.
func (s *Sellers) ListMarketplaceParticipationsByNextToken(
	ctx context.Context,
	token string,
) (*MarketplaceParticipations, error) {
	var res MarketplaceParticipations
	err := callInto(ctx, s.client, FamilySellers, "ListMarketplaceParticipationsByNextToken",
		Values{"NextToken": token}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
