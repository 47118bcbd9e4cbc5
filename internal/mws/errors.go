package mws

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidConfig is returned when a client cannot be constructed from
	// the supplied credentials (unknown region, missing keys).
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNotXML is returned by Decode when the body is not a well-formed XML
	// document. Callers treat it as "use the raw bytes", not as a failure.
	ErrNotXML = errors.New("response body is not XML")

	// ErrContentIntegrity is matched by IntegrityError via errors.Is.
	ErrContentIntegrity = errors.New("content integrity check failed")
)

// ServiceError is an application-level error returned by the service inside
// an ErrorResponse envelope, usually alongside HTTP 200.
type ServiceError struct {
	Type       string
	Code       string
	Message    string
	RequestID  string
	StatusCode int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf(
		"mws %s error %s: %s (request id %s)",
		strings.ToLower(e.Type),
		e.Code,
		e.Message,
		e.RequestID,
	)
}

// HTTPError is returned for a non-2xx status that did not carry an
// ErrorResponse envelope. Response is the original response; its body has
// already been read into Body.
type HTTPError struct {
	StatusCode int
	Body       string
	Response   *http.Response
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mws HTTP error (status %d): %s", e.StatusCode, e.Body)
}

// IntegrityError is returned when a raw response body does not match the
// Content-MD5 header sent with it.
type IntegrityError struct {
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: Content-MD5 %s, computed %s", ErrContentIntegrity, e.Expected, e.Actual)
}

// Is reports whether target is ErrContentIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrContentIntegrity
}

// ValidationError is a field constraint violation found while building a
// structured request payload. It is always raised before any network call.
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s fails %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("field %s fails %s", e.Field, e.Rule)
}

type errorResponse struct {
	XMLName xml.Name `xml:"ErrorResponse"`
	Error   struct {
		Type    string `xml:"Type"`
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	} `xml:"Error"`
	RequestID string `xml:"RequestID"`
	// Some endpoints spell it RequestId.
	RequestIDAlt string `xml:"RequestId"`
}

// ParseErrorResponse returns the ServiceError carried by body, or nil when
// body is not an ErrorResponse document or the envelope is empty.
func ParseErrorResponse(body []byte) *ServiceError {
	var env errorResponse
	if err := xml.Unmarshal(stripNamespaces(body), &env); err != nil {
		return nil
	}
	if env.Error.Code == "" && strings.TrimSpace(env.Error.Message) == "" {
		return nil
	}
	reqID := env.RequestID
	if reqID == "" {
		reqID = env.RequestIDAlt
	}
	return &ServiceError{
		Type:      strings.TrimSpace(env.Error.Type),
		Code:      strings.TrimSpace(env.Error.Code),
		Message:   strings.TrimSpace(env.Error.Message),
		RequestID: strings.TrimSpace(reqID),
	}
}
