package request

// CreateIpRange holds the request body for registering a range directly.
// The expression accepts a single address, a hyphenated pair, or a CIDR.
type CreateIpRange struct {
	Expression string `json:"expression" validate:"required,max=100"`
}
