package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/mws"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printStatusTable(w io.Writer, rows map[string]*mws.ServiceStatus, order []string) error {
	tw := newTabWriter(w)
	tw.writef("FAMILY\tSTATUS\tAS OF\tMESSAGE\n")
	for _, name := range order {
		st := rows[name]
		msg := ""
		if len(st.Messages) > 0 {
			msg = truncate(st.Messages[0].Text, 60)
		}
		tw.writef("%s\t%s\t%s\t%s\n", name, st.Status, formatTime(st.Timestamp.Time), msg)
	}
	return tw.finish()
}

func printReportListTable(w io.Writer, reports []mws.ReportInfo) error {
	tw := newTabWriter(w)
	tw.writef("REPORT ID\tTYPE\tREQUEST ID\tAVAILABLE\tACKED\n")
	for i := range reports {
		r := &reports[i]
		tw.writef("%s\t%s\t%s\t%s\t%v\n",
			r.ReportID, r.ReportType, r.ReportRequestID, formatTime(r.AvailableDate.Time), r.Acknowledged)
	}
	return tw.finish()
}

func printReportRequestsTable(w io.Writer, reqs []mws.ReportRequestInfo) error {
	tw := newTabWriter(w)
	tw.writef("REQUEST ID\tTYPE\tSTATUS\tSUBMITTED\tREPORT ID\n")
	for i := range reqs {
		r := &reqs[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			r.ReportRequestID, r.ReportType, r.ReportProcessingStatus,
			formatTime(r.SubmittedDate.Time), dash(r.GeneratedReportID))
	}
	return tw.finish()
}

func printRecord(w io.Writer, rec *jobs.Record) error {
	tw := newTabWriter(w)
	tw.writef("Kind:\t%s\n", rec.Kind)
	tw.writef("ID:\t%s\n", rec.ID)
	tw.writef("Type:\t%s\n", rec.Type)
	tw.writef("Status:\t%s\n", rec.Status)
	if rec.SubmittedAt != nil {
		tw.writef("Submitted:\t%s\n", formatTime(*rec.SubmittedAt))
	}
	if rec.CompletedAt != nil {
		tw.writef("Completed:\t%s\n", formatTime(*rec.CompletedAt))
	}
	if rec.ResultID != "" {
		tw.writef("Result ID:\t%s\n", rec.ResultID)
	}
	return tw.finish()
}

func printFeedSubmissionsTable(w io.Writer, subs []mws.FeedSubmissionInfo) error {
	tw := newTabWriter(w)
	tw.writef("SUBMISSION ID\tTYPE\tSTATUS\tSUBMITTED\tCOMPLETED\n")
	for i := range subs {
		s := &subs[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			s.FeedSubmissionID, s.FeedType, s.FeedProcessingStatus,
			formatTime(s.SubmittedDate.Time), formatTime(s.CompletedProcessingDate.Time))
	}
	return tw.finish()
}

func printOrdersTable(w io.Writer, orders []mws.Order) error {
	tw := newTabWriter(w)
	tw.writef("ORDER ID\tPURCHASED\tSTATUS\tCHANNEL\tTOTAL\tSHIP TO\n")
	for i := range orders {
		o := &orders[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			o.AmazonOrderID, formatTime(o.PurchaseDate.Time), o.OrderStatus, o.FulfillmentChannel,
			formatMoney(o.OrderTotal), shipTo(o.ShippingAddress))
	}
	return tw.finish()
}

func printOrderItemsTable(w io.Writer, items []mws.OrderItem) error {
	tw := newTabWriter(w)
	tw.writef("SKU\tASIN\tTITLE\tQTY\tSHIPPED\tPRICE\n")
	for i := range items {
		it := &items[i]
		tw.writef("%s\t%s\t%s\t%d\t%d\t%s\n",
			it.SellerSKU, it.ASIN, truncate(it.Title, 40), it.QuantityOrdered, it.QuantityShipped,
			formatMoney(it.ItemPrice))
	}
	return tw.finish()
}

func printProductsTable(w io.Writer, results []mws.ProductResult) error {
	tw := newTabWriter(w)
	tw.writef("ID\tSTATUS\tASIN\tTITLE\tBRAND\tRANK\n")
	for _, r := range results {
		id := r.ID
		if id == "" {
			id = r.ASIN
		}
		if r.Error != nil {
			tw.writef("%s\t%s\t-\t%s\t-\t-\n", dash(id), r.Status, r.Error.Error())
			continue
		}
		for _, p := range r.All() {
			rank := "-"
			if len(p.SalesRankings) > 0 {
				rank = fmt.Sprintf("%d", p.SalesRankings[0].Rank)
			}
			tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
				dash(id), r.Status, p.Identifiers.ASIN, truncate(p.Attributes.Title, 40),
				dash(p.Attributes.Brand), rank)
		}
	}
	return tw.finish()
}

func printMarketplacesTable(w io.Writer, mp *mws.MarketplaceParticipations) error {
	suspended := make(map[string]string, len(mp.Participations))
	for _, p := range mp.Participations {
		suspended[p.MarketplaceID] = p.HasSellerSuspendedListings
	}

	tw := newTabWriter(w)
	tw.writef("MARKETPLACE ID\tNAME\tCOUNTRY\tCURRENCY\tDOMAIN\tSUSPENDED\n")
	for _, m := range mp.Marketplaces {
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			m.MarketplaceID, m.Name, m.DefaultCountryCode, m.DefaultCurrencyCode, m.DomainName,
			dash(suspended[m.MarketplaceID]))
	}
	return tw.finish()
}

func printSupplyTable(w io.Writer, supply []mws.InventorySupply) error {
	tw := newTabWriter(w)
	tw.writef("SKU\tFNSKU\tASIN\tCONDITION\tTOTAL\tIN STOCK\n")
	for i := range supply {
		s := &supply[i]
		tw.writef("%s\t%s\t%s\t%s\t%d\t%d\n",
			s.SellerSKU, s.FNSKU, s.ASIN, s.Condition, s.TotalSupplyQuantity, s.InStockSupplyQuantity)
	}
	return tw.finish()
}

func printJobsTable(w io.Writer, list []domain.Job) error {
	tw := newTabWriter(w)
	tw.writef("ID\tREPORT\tSTATE\tSTATUS\tPOLLS\tCREATED\tDURATION\tERROR\n")
	for i := range list {
		j := &list[i]
		duration := "-"
		if d := j.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		tw.writef("%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			j.ID, j.Name, j.State, dash(j.Status), j.Polls, formatTime(j.CreatedAt), duration,
			truncate(j.ErrorText, 40))
	}
	return tw.finish()
}

func printJobDetail(w io.Writer, j *domain.Job) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", j.ID)
	tw.writef("Report:\t%s (%s)\n", j.Name, j.ReportType)
	tw.writef("State:\t%s\n", j.State)
	tw.writef("Status:\t%s\n", dash(j.Status))
	tw.writef("Request ID:\t%s\n", dash(j.RequestID))
	tw.writef("Report ID:\t%s\n", dash(j.ReportID))
	tw.writef("Polls:\t%d\n", j.Polls)
	tw.writef("Bytes:\t%d\n", j.Bytes)
	tw.writef("Archive:\t%s\n", dash(j.ArchiveLocation))
	tw.writef("Created:\t%s\n", formatTime(j.CreatedAt))
	if j.CompletedAt != nil {
		tw.writef("Completed:\t%s\n", formatTime(*j.CompletedAt))
	}
	if j.AckError != "" {
		tw.writef("Ack Error:\t%s\n", j.AckError)
	}
	if j.ErrorText != "" {
		tw.writef("Error:\t%s\n", j.ErrorText)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func formatMoney(m mws.Money) string {
	if m.Amount == "" {
		return "-"
	}
	return m.Amount + " " + m.CurrencyCode
}

func shipTo(a mws.OrderAddress) string {
	if a.City == "" {
		return "-"
	}
	return a.City + ", " + a.State()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
