package events

// SubscribeOptions carries optional registration parameters.
type SubscribeOptions struct {
	// Owner is the invocation context of the handler. Registrations sharing an owner
	// can be removed together.
	Owner any
}

// SubscribeOption configures SubscribeOptions.
type SubscribeOption func(*SubscribeOptions)

// WithOwner records the owner (invocation context) of a registration.
func WithOwner(owner any) SubscribeOption {
	return func(o *SubscribeOptions) { o.Owner = owner }
}
