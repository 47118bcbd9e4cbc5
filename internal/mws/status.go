package mws

import "context"

// Service health values returned by GetServiceStatus.
const (
	ServiceGreen      = "GREEN"
	ServiceGreenInfo  = "GREEN_I"
	ServiceYellow     = "YELLOW"
	ServiceRed        = "RED"
	serviceStatusCall = "GetServiceStatus"
)

// ServiceMessage is an informational message attached to a status.
type ServiceMessage struct {
	Locale string `xml:"Locale"`
	Text   string `xml:"Text"`
}

// ServiceStatus is the health of one endpoint family.
type ServiceStatus struct {
	Status    string           `xml:"Status"`
	Timestamp Timestamp        `xml:"Timestamp"`
	MessageID string           `xml:"MessageId"`
	Messages  []ServiceMessage `xml:"Messages>Message"`
}

// OK reports whether the service is fully or mostly operational.
func (s ServiceStatus) OK() bool {
	return s.Status == ServiceGreen || s.Status == ServiceGreenInfo
}

// GetServiceStatus returns the operational status of family. Every family
// supports it.
func (c *Client) GetServiceStatus(ctx context.Context, family Family) (*ServiceStatus, error) {
	var st ServiceStatus
	if err := callInto(ctx, c, family, serviceStatusCall, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
