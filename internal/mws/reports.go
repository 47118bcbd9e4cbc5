package mws

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/metrics"
)

// ErrNoReports is returned by DownloadMostRecent when no report of the
// requested type is available.
var ErrNoReports = errors.New("no reports available")

// Reports groups the report operations.
type Reports struct {
	client *Client
}

// Reports returns the report operations bound to c.
func (c *Client) Reports() *Reports {
	return &Reports{client: c}
}

// ReportRequestInfo describes one report request.
type ReportRequestInfo struct {
	ReportRequestID        string    `xml:"ReportRequestId"`
	ReportType             string    `xml:"ReportType"`
	StartDate              Timestamp `xml:"StartDate"`
	EndDate                Timestamp `xml:"EndDate"`
	Scheduled              bool      `xml:"Scheduled"`
	SubmittedDate          Timestamp `xml:"SubmittedDate"`
	ReportProcessingStatus string    `xml:"ReportProcessingStatus"`
	GeneratedReportID      string    `xml:"GeneratedReportId"`
	StartedProcessingDate  Timestamp `xml:"StartedProcessingDate"`
	CompletedDate          Timestamp `xml:"CompletedDate"`
}

// Record converts the request info into a job record.
func (i ReportRequestInfo) Record() jobs.Record {
	return jobs.Record{
		Kind:        jobs.KindReport,
		ID:          i.ReportRequestID,
		Type:        i.ReportType,
		Status:      i.ReportProcessingStatus,
		SubmittedAt: i.SubmittedDate.Ptr(),
		StartedAt:   i.StartedProcessingDate.Ptr(),
		CompletedAt: i.CompletedDate.Ptr(),
		ResultID:    i.GeneratedReportID,
	}
}

// ReportRequestList is one page of report requests.
type ReportRequestList struct {
	NextToken string              `xml:"NextToken"`
	HasNext   bool                `xml:"HasNext"`
	Requests  []ReportRequestInfo `xml:"ReportRequestInfo"`
}

// ReportInfo describes a generated report.
type ReportInfo struct {
	ReportID         string    `xml:"ReportId"`
	ReportType       string    `xml:"ReportType"`
	ReportRequestID  string    `xml:"ReportRequestId"`
	AvailableDate    Timestamp `xml:"AvailableDate"`
	Acknowledged     bool      `xml:"Acknowledged"`
	AcknowledgedDate Timestamp `xml:"AcknowledgedDate"`
}

// ReportList is one page of generated reports.
type ReportList struct {
	NextToken string       `xml:"NextToken"`
	HasNext   bool         `xml:"HasNext"`
	Reports   []ReportInfo `xml:"ReportInfo"`
}

// ReportSchedule describes a scheduled report.
type ReportSchedule struct {
	ReportType    string    `xml:"ReportType"`
	Schedule      string    `xml:"Schedule"`
	ScheduledDate Timestamp `xml:"ScheduledDate"`
}

type countResult struct {
	Count int `xml:"Count"`
}

// RequestReportInput holds the RequestReport parameters.
type RequestReportInput struct {
	ReportType     string
	StartDate      time.Time
	EndDate        time.Time
	MarketplaceIDs []string
	ReportOptions  string
}

// RequestReport asks the service to generate a report.
func (r *Reports) RequestReport(ctx context.Context, in RequestReportInput) (*ReportRequestInfo, error) {
	params := Values{}
	params.Set("ReportType", in.ReportType)
	params.Set("StartDate", in.StartDate)
	params.Set("EndDate", in.EndDate)
	params.Set("ReportOptions", in.ReportOptions)
	params.Merge(Enumerate("MarketplaceIdList.Id", in.MarketplaceIDs))

	resp, err := r.client.Call(ctx, FamilyReports, "RequestReport", params)
	if err != nil {
		return nil, fmt.Errorf("requesting report %s: %w", in.ReportType, err)
	}

	var res struct {
		Info ReportRequestInfo `xml:"ReportRequestInfo"`
	}
	if err := resp.Unmarshal(&res); err != nil {
		return nil, err
	}
	return &res.Info, nil
}

// ReportRequestListInput filters GetReportRequestList.
type ReportRequestListInput struct {
	RequestIDs         []string
	ReportTypes        []string
	ProcessingStatuses []string
	MaxCount           int
	RequestedFrom      time.Time
	RequestedTo        time.Time
}

// GetReportRequestList lists report requests matching in.
func (r *Reports) GetReportRequestList(
	ctx context.Context,
	in ReportRequestListInput,
) (*ReportRequestList, error) {
	params := Values{}
	if in.MaxCount > 0 {
		params.Set("MaxCount", in.MaxCount)
	}
	params.Set("RequestedFromDate", in.RequestedFrom)
	params.Set("RequestedToDate", in.RequestedTo)
	params.Merge(Enumerate("ReportRequestIdList.Id", in.RequestIDs))
	params.Merge(Enumerate("ReportTypeList.Type", in.ReportTypes))
	params.Merge(Enumerate("ReportProcessingStatusList.Status", in.ProcessingStatuses))

	var list ReportRequestList
	if err := r.call(ctx, "GetReportRequestList", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetReportRequestListByNextToken fetches the next page of report requests.
func (r *Reports) GetReportRequestListByNextToken(ctx context.Context, token string) (*ReportRequestList, error) {
	var list ReportRequestList
	if err := r.call(ctx, "GetReportRequestListByNextToken", Values{"NextToken": token}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ReportRequestCountInput filters GetReportRequestCount.
type ReportRequestCountInput struct {
	ReportTypes        []string
	ProcessingStatuses []string
	RequestedFrom      time.Time
	RequestedTo        time.Time
}

// GetReportRequestCount counts report requests matching in.
func (r *Reports) GetReportRequestCount(ctx context.Context, in ReportRequestCountInput) (int, error) {
	params := Values{}
	params.Set("RequestedFromDate", in.RequestedFrom)
	params.Set("RequestedToDate", in.RequestedTo)
	params.Merge(Enumerate("ReportTypeList.Type", in.ReportTypes))
	params.Merge(Enumerate("ReportProcessingStatusList.Status", in.ProcessingStatuses))

	var res countResult
	if err := r.call(ctx, "GetReportRequestCount", params, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// ReportListInput filters GetReportList. A nil Acknowledged means either.
type ReportListInput struct {
	RequestIDs    []string
	ReportTypes   []string
	MaxCount      int
	Acknowledged  *bool
	AvailableFrom time.Time
	AvailableTo   time.Time
}

// GetReportList lists generated reports matching in.
func (r *Reports) GetReportList(ctx context.Context, in ReportListInput) (*ReportList, error) {
	params := Values{}
	if in.MaxCount > 0 {
		params.Set("MaxCount", in.MaxCount)
	}
	params.Set("Acknowledged", in.Acknowledged)
	params.Set("AvailableFromDate", in.AvailableFrom)
	params.Set("AvailableToDate", in.AvailableTo)
	params.Merge(Enumerate("ReportRequestIdList.Id", in.RequestIDs))
	params.Merge(Enumerate("ReportTypeList.Type", in.ReportTypes))

	var list ReportList
	if err := r.call(ctx, "GetReportList", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetReportListByNextToken fetches the next page of generated reports.
func (r *Reports) GetReportListByNextToken(ctx context.Context, token string) (*ReportList, error) {
	var list ReportList
	if err := r.call(ctx, "GetReportListByNextToken", Values{"NextToken": token}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ReportCountInput filters GetReportCount.
type ReportCountInput struct {
	ReportTypes   []string
	Acknowledged  *bool
	AvailableFrom time.Time
	AvailableTo   time.Time
}

// GetReportCount counts generated reports matching in.
func (r *Reports) GetReportCount(ctx context.Context, in ReportCountInput) (int, error) {
	params := Values{}
	params.Set("Acknowledged", in.Acknowledged)
	params.Set("AvailableFromDate", in.AvailableFrom)
	params.Set("AvailableToDate", in.AvailableTo)
	params.Merge(Enumerate("ReportTypeList.Type", in.ReportTypes))

	var res countResult
	if err := r.call(ctx, "GetReportCount", params, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// GetReport downloads a generated report's raw content.
func (r *Reports) GetReport(ctx context.Context, reportID string) ([]byte, error) {
	resp, err := r.client.Call(ctx, FamilyReports, "GetReport", Values{"ReportId": reportID})
	if err != nil {
		return nil, fmt.Errorf("downloading report %s: %w", reportID, err)
	}
	return resp.Body, nil
}

// GetReportScheduleList lists report schedules for the given types.
func (r *Reports) GetReportScheduleList(ctx context.Context, reportTypes []string) ([]ReportSchedule, error) {
	var res struct {
		Schedules []ReportSchedule `xml:"ReportSchedule"`
	}
	if err := r.call(ctx, "GetReportScheduleList", Enumerate("ReportTypeList.Type", reportTypes), &res); err != nil {
		return nil, err
	}
	return res.Schedules, nil
}

// GetReportScheduleCount counts report schedules for the given types.
func (r *Reports) GetReportScheduleCount(ctx context.Context, reportTypes []string) (int, error) {
	var res countResult
	if err := r.call(ctx, "GetReportScheduleCount", Enumerate("ReportTypeList.Type", reportTypes), &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// UpdateReportAcknowledgements marks reports as acknowledged or not.
func (r *Reports) UpdateReportAcknowledgements(
	ctx context.Context,
	reportIDs []string,
	acknowledged bool,
) ([]ReportInfo, error) {
	params := Values{"Acknowledged": strconv.FormatBool(acknowledged)}
	params.Merge(Enumerate("ReportIdList.Id", reportIDs))

	var res struct {
		Reports []ReportInfo `xml:"ReportInfo"`
	}
	if err := r.call(ctx, "UpdateReportAcknowledgements", params, &res); err != nil {
		return nil, err
	}
	return res.Reports, nil
}

// RequestStatus looks up a single report request and returns it as a job
// record. It is the StatusFunc the poller uses for report jobs.
func (r *Reports) RequestStatus(ctx context.Context, requestID string) (*jobs.Record, error) {
	list, err := r.GetReportRequestList(ctx, ReportRequestListInput{RequestIDs: []string{requestID}})
	if err != nil {
		return nil, err
	}
	if len(list.Requests) == 0 {
		return nil, fmt.Errorf("report request %s: %w", requestID, jobs.ErrNotFound)
	}
	rec := list.Requests[0].Record()
	return &rec, nil
}

// ReportResult is the outcome of a completed report workflow.
type ReportResult struct {
	Request  jobs.Record
	ReportID string
	Content  []byte
	// AckErr is set when the post-download acknowledgment failed. The
	// content is still valid.
	AckErr error
}

// RequestAndDownload requests a report, waits for it with p, downloads the
// content and acknowledges it.
func (r *Reports) RequestAndDownload(
	ctx context.Context,
	in RequestReportInput,
	p *jobs.Poller,
) (*ReportResult, error) {
	info, err := r.RequestReport(ctx, in)
	if err != nil {
		return nil, err
	}
	return r.WaitAndDownload(ctx, info.ReportRequestID, p)
}

// WaitAndDownload waits for an existing report request and downloads it.
// A failed acknowledgment is logged and reported in AckErr, never returned.
func (r *Reports) WaitAndDownload(ctx context.Context, requestID string, p *jobs.Poller) (*ReportResult, error) {
	log := r.client.log.With("request_id", requestID)

	log.InfoContext(ctx, "waiting for report")
	rec, err := p.Wait(ctx, jobs.KindReport, requestID, r.RequestStatus)
	if err != nil {
		return nil, err
	}
	if rec.ResultID == "" {
		return nil, fmt.Errorf("report request %s finished without a generated report id", requestID)
	}

	log.InfoContext(ctx, "downloading report", "report_id", rec.ResultID)
	content, err := r.GetReport(ctx, rec.ResultID)
	if err != nil {
		return nil, err
	}

	res := &ReportResult{Request: *rec, ReportID: rec.ResultID, Content: content}
	if _, err := r.UpdateReportAcknowledgements(ctx, []string{rec.ResultID}, true); err != nil {
		metrics.ReportAckFailuresTotal.Inc()
		log.WarnContext(ctx, "acknowledging report", "report_id", rec.ResultID, "error", err)
		res.AckErr = err
	}
	return res, nil
}

// DownloadMostRecent downloads the newest available report of reportType.
func (r *Reports) DownloadMostRecent(ctx context.Context, reportType string) ([]byte, *ReportInfo, error) {
	list, err := r.GetReportList(ctx, ReportListInput{ReportTypes: []string{reportType}})
	if err != nil {
		return nil, nil, err
	}
	if len(list.Reports) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", reportType, ErrNoReports)
	}
	info := list.Reports[0]
	content, err := r.GetReport(ctx, info.ReportID)
	if err != nil {
		return nil, nil, err
	}
	return content, &info, nil
}

func (r *Reports) call(ctx context.Context, action string, params Values, v any) error {
	return callInto(ctx, r.client, FamilyReports, action, params, v)
}

func callInto(ctx context.Context, c *Client, family Family, action string, params Values, v any, opts ...CallOption) error {
	resp, err := c.Call(ctx, family, action, params, opts...)
	if err != nil {
		return fmt.Errorf("calling %s: %w", action, err)
	}
	if err := resp.Unmarshal(v); err != nil {
		return fmt.Errorf("decoding %s: %w", action, err)
	}
	return nil
}
