package mws

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/donaldgifford/mws-sync/internal/jobs"
)

// Generator renders a feed document of a fixed feed type.
type Generator interface {
	FeedType() string
	ContentType() string
	Generate() ([]byte, error)
}

// FeedTypeUpdateInboundPlan is the flat-file inbound plan update feed.
const FeedTypeUpdateInboundPlan = "_POST_FLAT_FILE_FBA_UPDATE_INBOUND_PLAN_"

// PlanItem is one SKU/quantity row of an inbound plan.
type PlanItem struct {
	MerchantSKU string
	Quantity    int
}

// InboundPlanFeed updates the quantities of an inbound shipment plan.
type InboundPlanFeed struct {
	PlanID string
	Items  []PlanItem
}

// FeedType implements Generator.
func (InboundPlanFeed) FeedType() string { return FeedTypeUpdateInboundPlan }

// ContentType implements Generator.
func (InboundPlanFeed) ContentType() string {
	return "text/tab-separated-values; charset=iso-8859-1"
}

// Generate implements Generator.
func (f InboundPlanFeed) Generate() ([]byte, error) {
	if f.PlanID == "" {
		return nil, &ValidationError{Field: "PlanID", Rule: "required"}
	}

	var b strings.Builder
	b.WriteString("PlanId\t" + f.PlanID + "\n\n")
	b.WriteString("MerchantSKU\tQuantity\n")
	for i, item := range f.Items {
		if strings.ContainsAny(item.MerchantSKU, "\t\n") {
			return nil, &ValidationError{Field: fmt.Sprintf("Items[%d].MerchantSKU", i), Rule: "tsv"}
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(item.MerchantSKU + "\t" + strconv.Itoa(item.Quantity))
	}
	return []byte(b.String()), nil
}

// Upload generates g, submits it and waits for processing with p.
func (f *Feeds) Upload(
	ctx context.Context,
	g Generator,
	marketplaceIDs []string,
	purgeAndReplace bool,
	p *jobs.Poller,
) (*jobs.Record, error) {
	body, err := g.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating %s feed: %w", g.FeedType(), err)
	}
	if len(marketplaceIDs) == 0 {
		marketplaceIDs = []string{DefaultMarketplaceID}
	}
	return f.SubmitAndWait(ctx, SubmitFeedInput{
		Feed:            body,
		FeedType:        g.FeedType(),
		MarketplaceIDs:  marketplaceIDs,
		ContentType:     g.ContentType(),
		PurgeAndReplace: purgeAndReplace,
	}, p)
}
