// Package mwstest provides a fake of the remote service for tests and local
// development. It verifies request signatures and simulates the report and
// feed job lifecycles.
package mwstest

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/mws"
)

// Fixed test credentials.
const (
	AccessKey = "AKIDTEST"
	SecretKey = "test-secret-key"
	AccountID = "A1TESTSELLER"
)

// DefaultReport is the flat-file content served for generated reports.
const DefaultReport = "sku\tprice\tquantity\nA-1\t9.99\t3\nB-2\t19.50\t0\n"

// Call is one request seen by the server.
type Call struct {
	Method string
	Path   string
	Action string
	Params url.Values
	Header http.Header
	Body   []byte
}

type job struct {
	id       string
	kind     jobs.Kind
	typ      string
	polls    int
	resultID string
}

// Server is a fake service endpoint.
type Server struct {
	*httptest.Server

	// PollsUntilDone is how many status polls a job answers in progress
	// before completing. Zero completes on the first poll.
	PollsUntilDone int
	// FinalStatus is the terminal status of every job; empty means _DONE_.
	FinalStatus string
	// ReportContent is served by GetReport.
	ReportContent []byte
	// BadContentMD5 makes GetReport send a Content-MD5 that does not match.
	BadContentMD5 bool
	// FailAck makes UpdateReportAcknowledgements answer with an error.
	FailAck bool
	// Log, when set, records every call at info level.
	Log *slog.Logger

	mu        sync.Mutex
	calls     []Call
	jobs      map[string]*job
	seq       int
	overrides map[string]http.HandlerFunc
	now       func() time.Time
}

// New returns an unstarted fake. Configure it, then call Listen.
func New() *Server {
	return &Server{
		ReportContent: []byte(DefaultReport),
		jobs:          make(map[string]*job),
		overrides:     make(map[string]http.HandlerFunc),
		now:           time.Now,
	}
}

// NewServer starts a fake service and registers its shutdown with t.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := New()
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Listen starts serving on addr. The caller owns Close.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(s.serve))
	_ = srv.Listener.Close()
	srv.Listener = ln
	srv.Config.ReadHeaderTimeout = 10 * time.Second
	s.Server = srv
	s.Start()
	return nil
}

// Credentials returns credentials pointing at the fake.
func (s *Server) Credentials() mws.Credentials {
	return mws.Credentials{
		AccessKey: AccessKey,
		SecretKey: SecretKey,
		AccountID: AccountID,
		Domain:    s.URL,
	}
}

// Client returns a client wired to the fake.
func (s *Server) Client(t testing.TB, opts ...mws.Option) *mws.Client {
	t.Helper()

	c, err := mws.NewClient(s.Credentials(), opts...)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

// Handle overrides the response for action.
func (s *Server) Handle(action string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[action] = h
}

// Calls returns every recorded call for action, or all calls when action is
// empty.
func (s *Server) Calls(action string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if action == "" || c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

// AddReportRequest registers an existing report request, as if requested
// earlier, and returns its id.
func (s *Server) AddReportRequest(reportType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newJob(jobs.KindReport, reportType).id
}

func (s *Server) newJob(kind jobs.Kind, typ string) *job {
	s.seq++
	prefix := "RR"
	if kind == jobs.KindFeed {
		prefix = "FS"
	}
	j := &job{id: fmt.Sprintf("%s%04d", prefix, s.seq), kind: kind, typ: typ}
	s.jobs[j.id] = j
	return j
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	q := r.URL.Query()
	action := q.Get("Action")

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Action: action,
		Params: q,
		Header: r.Header.Clone(),
		Body:   body,
	})
	override := s.overrides[action]
	s.mu.Unlock()

	if s.Log != nil {
		s.Log.Info("call", "method", r.Method, "path", r.URL.Path, "action", action)
	}

	if !s.signatureValid(r) {
		WriteError(w, http.StatusForbidden, "Sender", "SignatureDoesNotMatch",
			"The request signature we calculated does not match the signature you provided.")
		return
	}
	if override != nil {
		override(w, r)
		return
	}

	switch action {
	case "GetServiceStatus":
		writeResult(w, action, `<Status>GREEN</Status><Timestamp>2026-01-01T00:00:00Z</Timestamp>`)
	case "RequestReport":
		s.requestReport(w, q)
	case "GetReportRequestList":
		s.reportRequestList(w, q)
	case "GetReport":
		s.getReport(w)
	case "UpdateReportAcknowledgements":
		s.ackReports(w, q)
	case "SubmitFeed":
		s.submitFeed(w, r, q, body)
	case "GetFeedSubmissionList":
		s.feedSubmissionList(w, q)
	default:
		WriteError(w, http.StatusBadRequest, "Sender", "InvalidAction", "unsupported action "+action)
	}
}

// signatureValid recomputes the signature over every parameter but
// Signature itself, against the host the client addressed.
func (s *Server) signatureValid(r *http.Request) bool {
	q := r.URL.Query()
	got := q.Get("Signature")
	params := mws.Values{}
	for k, vs := range q {
		if k == "Signature" || len(vs) == 0 {
			continue
		}
		params[k] = vs[0]
	}
	want, err := url.QueryUnescape(mws.Sign(SecretKey, r.Method, r.Host, r.URL.Path, params.Canonical()))
	return err == nil && want == got
}

func (s *Server) requestReport(w http.ResponseWriter, q url.Values) {
	s.mu.Lock()
	j := s.newJob(jobs.KindReport, q.Get("ReportType"))
	s.mu.Unlock()

	writeResult(w, "RequestReport", s.reportInfoXML(j, false))
}

func (s *Server) reportRequestList(w http.ResponseWriter, q url.Values) {
	s.mu.Lock()
	var infos strings.Builder
	for i := 1; ; i++ {
		id := q.Get(fmt.Sprintf("ReportRequestIdList.Id.%d", i))
		if id == "" {
			break
		}
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		j.polls++
		infos.WriteString(s.reportInfoXML(j, true))
	}
	s.mu.Unlock()

	writeResult(w, "GetReportRequestList", "<HasNext>false</HasNext>"+infos.String())
}

// reportInfoXML renders a ReportRequestInfo. Must hold s.mu when polled.
func (s *Server) reportInfoXML(j *job, polled bool) string {
	submitted := mws.FormatTime(s.now().Add(-time.Minute))
	status := jobs.StatusSubmitted
	var extra string
	if polled {
		status = jobs.StatusInProgress
		extra = "<StartedProcessingDate>" + submitted + "</StartedProcessingDate>"
		if j.polls > s.PollsUntilDone {
			status = s.finalStatus()
			if status == jobs.StatusDone {
				j.resultID = "GR" + strings.TrimPrefix(j.id, "RR")
				extra += "<GeneratedReportId>" + j.resultID + "</GeneratedReportId>"
			}
			extra += "<CompletedDate>" + mws.FormatTime(s.now()) + "</CompletedDate>"
		}
	}
	return fmt.Sprintf(`<ReportRequestInfo>
  <ReportRequestId>%s</ReportRequestId>
  <ReportType>%s</ReportType>
  <StartDate>2026-01-01T00:00:00+00:00</StartDate>
  <EndDate>2026-01-02T00:00:00+00:00</EndDate>
  <Scheduled>false</Scheduled>
  <SubmittedDate>%s</SubmittedDate>
  <ReportProcessingStatus>%s</ReportProcessingStatus>
  %s
</ReportRequestInfo>`, j.id, j.typ, submitted, status, extra)
}

func (s *Server) finalStatus() string {
	if s.FinalStatus == "" {
		return jobs.StatusDone
	}
	return s.FinalStatus
}

func (s *Server) getReport(w http.ResponseWriter) {
	s.mu.Lock()
	content := s.ReportContent
	bad := s.BadContentMD5
	s.mu.Unlock()

	sum := mws.ContentMD5(content)
	if bad {
		sum = mws.ContentMD5([]byte("tampered"))
	}
	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	w.Header().Set("Content-MD5", sum)
	_, _ = w.Write(content)
}

func (s *Server) ackReports(w http.ResponseWriter, q url.Values) {
	s.mu.Lock()
	fail := s.FailAck
	s.mu.Unlock()

	if fail {
		WriteError(w, http.StatusOK, "Sender", "InvalidReportId", "acknowledgment rejected")
		return
	}
	var infos strings.Builder
	for i := 1; ; i++ {
		id := q.Get(fmt.Sprintf("ReportIdList.Id.%d", i))
		if id == "" {
			break
		}
		fmt.Fprintf(&infos,
			"<ReportInfo><ReportId>%s</ReportId><Acknowledged>%s</Acknowledged></ReportInfo>",
			id, q.Get("Acknowledged"))
	}
	writeResult(w, "UpdateReportAcknowledgements", infos.String())
}

func (s *Server) submitFeed(w http.ResponseWriter, r *http.Request, q url.Values, body []byte) {
	if r.Header.Get("Content-MD5") != mws.ContentMD5(body) {
		WriteError(w, http.StatusBadRequest, "Sender", "ContentMD5DoesNotMatch", "the feed body does not match Content-MD5")
		return
	}

	s.mu.Lock()
	j := s.newJob(jobs.KindFeed, q.Get("FeedType"))
	s.mu.Unlock()

	writeResult(w, "SubmitFeed", s.feedInfoXML(j, false))
}

func (s *Server) feedSubmissionList(w http.ResponseWriter, q url.Values) {
	s.mu.Lock()
	var infos strings.Builder
	for i := 1; ; i++ {
		id := q.Get(fmt.Sprintf("FeedSubmissionIdList.Id.%d", i))
		if id == "" {
			break
		}
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		j.polls++
		infos.WriteString(s.feedInfoXML(j, true))
	}
	s.mu.Unlock()

	writeResult(w, "GetFeedSubmissionList", "<HasNext>false</HasNext>"+infos.String())
}

func (s *Server) feedInfoXML(j *job, polled bool) string {
	submitted := mws.FormatTime(s.now().Add(-time.Minute))
	status := jobs.StatusSubmitted
	var extra string
	if polled {
		status = jobs.StatusInProgress
		if j.polls > s.PollsUntilDone {
			status = s.finalStatus()
			extra = "<CompletedProcessingDate>" + mws.FormatTime(s.now()) + "</CompletedProcessingDate>"
		}
	}
	return fmt.Sprintf(`<FeedSubmissionInfo>
  <FeedSubmissionId>%s</FeedSubmissionId>
  <FeedType>%s</FeedType>
  <SubmittedDate>%s</SubmittedDate>
  <FeedProcessingStatus>%s</FeedProcessingStatus>
  %s
</FeedSubmissionInfo>`, j.id, j.typ, submitted, status, extra)
}

// WriteResult writes a successful <Action>Response envelope around inner.
func WriteResult(w http.ResponseWriter, action, inner string) {
	writeResult(w, action, inner)
}

func writeResult(w http.ResponseWriter, action, inner string) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?>
<%[1]sResponse xmlns="http://mws.amazonaws.com/doc/2009-01-01/">
  <%[1]sResult>%[2]s</%[1]sResult>
  <ResponseMetadata><RequestId>req-%[1]s</RequestId></ResponseMetadata>
</%[1]sResponse>`, action, inner)
}

// WriteError writes an ErrorResponse envelope with the given HTTP status.
func WriteError(w http.ResponseWriter, status int, typ, code, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0"?>
<ErrorResponse xmlns="http://mws.amazonaws.com/doc/2009-01-01/">
  <Error><Type>%s</Type><Code>%s</Code><Message>%s</Message></Error>
  <RequestID>req-error</RequestID>
</ErrorResponse>`, typ, code, message)
}
