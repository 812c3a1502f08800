// Package businessflow contains the business logic for the application.
package businessflow

// ClientMetadata holds client-related information for audit and abuse review
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request correlation id
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}
