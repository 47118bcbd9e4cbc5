package mws

import (
	"context"
	"fmt"
	"net/http"
)

// Recommendations groups the selling recommendation operations. All of them
// are sent as POST.
type Recommendations struct {
	client *Client
}

// Recommendations returns the recommendation operations bound to c.
func (c *Client) Recommendations() *Recommendations {
	return &Recommendations{client: c}
}

// RecommendationsLastUpdated holds, per category, when recommendations last
// changed. Zero means no active recommendations.
type RecommendationsLastUpdated struct {
	Inventory      Timestamp `xml:"InventoryRecommendationsLastUpdated"`
	Selection      Timestamp `xml:"SelectionRecommendationsLastUpdated"`
	Pricing        Timestamp `xml:"PricingRecommendationsLastUpdated"`
	Fulfillment    Timestamp `xml:"FulfillmentRecommendationsLastUpdated"`
	GlobalSelling  Timestamp `xml:"GlobalSellingRecommendationsLastUpdated"`
	ListingQuality Timestamp `xml:"ListingQualityRecommendationsLastUpdated"`
	Advertising    Timestamp `xml:"AdvertisingRecommendationsLastUpdated"`
}

// RecommendationsPage is one page of recommendations. The category-specific
// bodies vary too much to type, so they are kept as a tree.
type RecommendationsPage struct {
	NextToken string
	Tree      *Node
}

// GetLastUpdatedTimeForRecommendations reports when each category changed.
func (r *Recommendations) GetLastUpdatedTimeForRecommendations(
	ctx context.Context,
	marketplaceID string,
) (*RecommendationsLastUpdated, error) {
	var res RecommendationsLastUpdated
	err := callInto(ctx, r.client, FamilyRecommendations, "GetLastUpdatedTimeForRecommendations",
		marketplace(marketplaceID), &res, WithMethod(http.MethodPost))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListRecommendations lists active recommendations, optionally for one
// category.
func (r *Recommendations) ListRecommendations(
	ctx context.Context,
	marketplaceID, category string,
) (*RecommendationsPage, error) {
	params := marketplace(marketplaceID)
	params.Set("RecommendationCategory", category)
	return r.page(ctx, "ListRecommendations", params)
}

// ListRecommendationsByNextToken fetches the next page.
func (r *Recommendations) ListRecommendationsByNextToken(ctx context.Context, token string) (*RecommendationsPage, error) {
	return r.page(ctx, "ListRecommendationsByNextToken", Values{"NextToken": token})
}

func (r *Recommendations) page(ctx context.Context, action string, params Values) (*RecommendationsPage, error) {
	resp, err := r.client.Call(ctx, FamilyRecommendations, action, params, WithMethod(http.MethodPost))
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", action, err)
	}
	return &RecommendationsPage{
		NextToken: resp.Tree.Text("NextToken"),
		Tree:      resp.Tree,
	}, nil
}
