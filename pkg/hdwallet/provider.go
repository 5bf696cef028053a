package hdwallet

// Provider is the key source attached to a TransactionSigner. It is either
// NoProvider or ActiveProvider.
type Provider interface {
	isProvider()
}

// NoProvider means that no usable key source is attached. Every signing
// operation fails with ErrInvalidSeed.
type NoProvider struct{}

// ActiveProvider carries the SDK operations are delegated to.
type ActiveProvider struct {
	SDK SDK
}

func (NoProvider) isProvider()     {}
func (ActiveProvider) isProvider() {}

// ProviderFor returns ActiveProvider for a non nil sdk, NoProvider otherwise.
func ProviderFor(sdk SDK) Provider {
	if sdk == nil {
		return NoProvider{}
	}
	return ActiveProvider{sdk}
}
