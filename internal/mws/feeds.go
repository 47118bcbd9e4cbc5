package mws

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/donaldgifford/mws-sync/internal/jobs"
)

// DefaultFeedContentType is used when SubmitFeedInput.ContentType is empty.
const DefaultFeedContentType = "text/xml"

// Feeds groups the feed operations.
type Feeds struct {
	client *Client
}

// Feeds returns the feed operations bound to c.
func (c *Client) Feeds() *Feeds {
	return &Feeds{client: c}
}

// FeedSubmissionInfo describes one feed submission.
type FeedSubmissionInfo struct {
	FeedSubmissionID        string    `xml:"FeedSubmissionId"`
	FeedType                string    `xml:"FeedType"`
	SubmittedDate           Timestamp `xml:"SubmittedDate"`
	FeedProcessingStatus    string    `xml:"FeedProcessingStatus"`
	StartedProcessingDate   Timestamp `xml:"StartedProcessingDate"`
	CompletedProcessingDate Timestamp `xml:"CompletedProcessingDate"`
}

// Record converts the submission info into a job record.
func (i FeedSubmissionInfo) Record() jobs.Record {
	return jobs.Record{
		Kind:        jobs.KindFeed,
		ID:          i.FeedSubmissionID,
		Type:        i.FeedType,
		Status:      i.FeedProcessingStatus,
		SubmittedAt: i.SubmittedDate.Ptr(),
		StartedAt:   i.StartedProcessingDate.Ptr(),
		CompletedAt: i.CompletedProcessingDate.Ptr(),
	}
}

// FeedSubmissionList is one page of feed submissions.
type FeedSubmissionList struct {
	NextToken   string               `xml:"NextToken"`
	HasNext     bool                 `xml:"HasNext"`
	Submissions []FeedSubmissionInfo `xml:"FeedSubmissionInfo"`
}

// SubmitFeedInput holds the SubmitFeed parameters. Feed is sent as the
// request body.
type SubmitFeedInput struct {
	Feed            []byte
	FeedType        string
	MarketplaceIDs  []string
	ContentType     string
	PurgeAndReplace bool
}

// SubmitFeed uploads a feed for asynchronous processing.
func (f *Feeds) SubmitFeed(ctx context.Context, in SubmitFeedInput) (*FeedSubmissionInfo, error) {
	contentType := in.ContentType
	if contentType == "" {
		contentType = DefaultFeedContentType
	}

	params := Values{
		"FeedType":        in.FeedType,
		"PurgeAndReplace": strconv.FormatBool(in.PurgeAndReplace),
	}
	params.Merge(Enumerate("MarketplaceIdList.Id", in.MarketplaceIDs))

	var res struct {
		Info FeedSubmissionInfo `xml:"FeedSubmissionInfo"`
	}
	err := callInto(ctx, f.client, FamilyFeeds, "SubmitFeed", params, &res,
		WithMethod(http.MethodPost),
		WithBody(in.Feed, contentType),
	)
	if err != nil {
		return nil, fmt.Errorf("submitting feed %s: %w", in.FeedType, err)
	}
	return &res.Info, nil
}

// FeedSubmissionListInput filters GetFeedSubmissionList.
type FeedSubmissionListInput struct {
	SubmissionIDs      []string
	FeedTypes          []string
	ProcessingStatuses []string
	MaxCount           int
	SubmittedFrom      time.Time
	SubmittedTo        time.Time
}

// GetFeedSubmissionList lists feed submissions matching in.
func (f *Feeds) GetFeedSubmissionList(
	ctx context.Context,
	in FeedSubmissionListInput,
) (*FeedSubmissionList, error) {
	params := Values{}
	if in.MaxCount > 0 {
		params.Set("MaxCount", in.MaxCount)
	}
	params.Set("SubmittedFromDate", in.SubmittedFrom)
	params.Set("SubmittedToDate", in.SubmittedTo)
	params.Merge(Enumerate("FeedSubmissionIdList.Id", in.SubmissionIDs))
	params.Merge(Enumerate("FeedTypeList.Type", in.FeedTypes))
	params.Merge(Enumerate("FeedProcessingStatusList.Status", in.ProcessingStatuses))

	var list FeedSubmissionList
	if err := callInto(ctx, f.client, FamilyFeeds, "GetFeedSubmissionList", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFeedSubmissionListByNextToken fetches the next page of submissions.
func (f *Feeds) GetFeedSubmissionListByNextToken(ctx context.Context, token string) (*FeedSubmissionList, error) {
	var list FeedSubmissionList
	err := callInto(ctx, f.client, FamilyFeeds, "GetFeedSubmissionListByNextToken", Values{"NextToken": token}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// FeedSubmissionCountInput filters GetFeedSubmissionCount.
type FeedSubmissionCountInput struct {
	FeedTypes          []string
	ProcessingStatuses []string
	SubmittedFrom      time.Time
	SubmittedTo        time.Time
}

// GetFeedSubmissionCount counts feed submissions matching in.
func (f *Feeds) GetFeedSubmissionCount(ctx context.Context, in FeedSubmissionCountInput) (int, error) {
	params := Values{}
	params.Set("SubmittedFromDate", in.SubmittedFrom)
	params.Set("SubmittedToDate", in.SubmittedTo)
	params.Merge(Enumerate("FeedTypeList.Type", in.FeedTypes))
	params.Merge(Enumerate("FeedProcessingStatusList.Status", in.ProcessingStatuses))

	var res countResult
	if err := callInto(ctx, f.client, FamilyFeeds, "GetFeedSubmissionCount", params, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// CancelFeedSubmissionsInput selects the submissions to cancel.
type CancelFeedSubmissionsInput struct {
	SubmissionIDs []string
	FeedTypes     []string
	SubmittedFrom time.Time
	SubmittedTo   time.Time
}

// CancelFeedSubmissions cancels matching submissions and returns the ones
// affected.
func (f *Feeds) CancelFeedSubmissions(
	ctx context.Context,
	in CancelFeedSubmissionsInput,
) ([]FeedSubmissionInfo, error) {
	params := Values{}
	params.Set("SubmittedFromDate", in.SubmittedFrom)
	params.Set("SubmittedToDate", in.SubmittedTo)
	params.Merge(Enumerate("FeedSubmissionIdList.Id", in.SubmissionIDs))
	params.Merge(Enumerate("FeedTypeList.Type", in.FeedTypes))

	var res struct {
		Count       int                  `xml:"Count"`
		Submissions []FeedSubmissionInfo `xml:"FeedSubmissionInfo"`
	}
	if err := callInto(ctx, f.client, FamilyFeeds, "CancelFeedSubmissions", params, &res); err != nil {
		return nil, err
	}
	return res.Submissions, nil
}

// GetFeedSubmissionResult downloads the processing report for a submission.
func (f *Feeds) GetFeedSubmissionResult(ctx context.Context, submissionID string) ([]byte, error) {
	resp, err := f.client.Call(ctx, FamilyFeeds, "GetFeedSubmissionResult", Values{"FeedSubmissionId": submissionID})
	if err != nil {
		return nil, fmt.Errorf("fetching feed submission result %s: %w", submissionID, err)
	}
	return resp.Body, nil
}

// SubmissionStatus looks up one submission and returns it as a job record.
func (f *Feeds) SubmissionStatus(ctx context.Context, submissionID string) (*jobs.Record, error) {
	list, err := f.GetFeedSubmissionList(ctx, FeedSubmissionListInput{SubmissionIDs: []string{submissionID}})
	if err != nil {
		return nil, err
	}
	if len(list.Submissions) == 0 {
		return nil, fmt.Errorf("feed submission %s: %w", submissionID, jobs.ErrNotFound)
	}
	rec := list.Submissions[0].Record()
	return &rec, nil
}

// SubmitAndWait submits a feed and polls until it is processed.
func (f *Feeds) SubmitAndWait(ctx context.Context, in SubmitFeedInput, p *jobs.Poller) (*jobs.Record, error) {
	info, err := f.SubmitFeed(ctx, in)
	if err != nil {
		return nil, err
	}
	return f.WaitForSubmission(ctx, info.FeedSubmissionID, p)
}

// WaitForSubmission polls an existing submission until it is processed.
func (f *Feeds) WaitForSubmission(ctx context.Context, submissionID string, p *jobs.Poller) (*jobs.Record, error) {
	f.client.log.InfoContext(ctx, "waiting for feed submission", "submission_id", submissionID)
	return p.Wait(ctx, jobs.KindFeed, submissionID, f.SubmissionStatus)
}
