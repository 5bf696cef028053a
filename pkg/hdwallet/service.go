package hdwallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
	"github.com/shopspring/decimal"
)

const (
	// DefaultGapLimit is the number of consecutive empty accounts, and of
	// consecutive empty addresses within an account, after which recovery
	// stops.
	DefaultGapLimit = 5

	mnemonicWordCount = 24
	changeIndex       = 0
	addressIndex      = 0
)

// Storage persists wallets and their addresses. Getters return nil and no
// error for missing items.
type Storage interface {
	SaveWallet(ctx context.Context, wallet *Seed) error
	GetWallet(ctx context.Context, walletID string) (*Seed, error)
	DeleteWallet(ctx context.Context, walletID string) error
	SaveAddress(ctx context.Context, address *Address) error
	GetAddress(ctx context.Context, walletID, address string) (*Address, error)
	GetAddresses(ctx context.Context, walletID string) ([]Address, error)
	DeleteAddress(ctx context.Context, walletID, address string) error
}

// RecoverResult is an address found while recovering a wallet.
type RecoverResult struct {
	Address      string
	AccountIndex uint32
	AddressIndex uint32
	AlgoValue    decimal.Decimal
	USDValue     decimal.Decimal
}

// ServiceOpts is the struct given to NewService.
// SDK is optional, by default one is built from each wallet's seed.
// DerivationType defaults to Peikert, GapLimit to DefaultGapLimit.
// Without Lookup every address is considered empty.
type ServiceOpts struct {
	SDK            SDK
	DerivationType DerivationType
	GapLimit       int
	Lookup         AccountLookup
}

func (o *ServiceOpts) validate() error {
	if o.DerivationType == 0 {
		o.DerivationType = Peikert
	}
	if err := o.DerivationType.Validate(); err != nil {
		return err
	}
	if o.GapLimit == 0 {
		o.GapLimit = DefaultGapLimit
	}
	if o.GapLimit < 0 {
		return ErrInvalidGapLimit
	}
	return nil
}

// Service creates wallets and derives, imports and recovers their
// addresses.
type Service struct {
	sdk            SDK
	derivationType DerivationType
	gapLimit       int
	lookup         AccountLookup
}

func NewService(opts ServiceOpts) (*Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Service{
		sdk:            opts.SDK,
		derivationType: opts.DerivationType,
		gapLimit:       opts.GapLimit,
		lookup:         opts.Lookup,
	}, nil
}

// DerivationType returns the derivation type of the addresses the service
// derives.
func (s *Service) DerivationType() DerivationType {
	return s.derivationType
}

// GenerateMnemonic returns a new random 24 words mnemonic.
func (s *Service) GenerateMnemonic() ([]string, error) {
	entropy, err := NewEntropy()
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(entropy)

	mnemonic, err := MnemonicFromEntropy(entropy)
	if err != nil {
		return nil, err
	}
	if len(mnemonic) != mnemonicWordCount {
		return nil, ErrInvalidMnemonic
	}
	return mnemonic, nil
}

// CreateWallet returns a new wallet with a random id for the given entropy.
func (s *Service) CreateWallet(entropy []byte) (*Seed, error) {
	if len(entropy) != EntropyLength {
		return nil, ErrInvalidEntropy
	}
	return &Seed{
		ID:      uuid.New().String(),
		Entropy: append([]byte{}, entropy...),
	}, nil
}

// GenerateAddress derives the first address of the given account.
func (s *Service) GenerateAddress(
	wallet *Seed, account uint32,
) (*Address, error) {
	if wallet == nil {
		return nil, ErrNullWallet
	}
	return s.deriveAddress(wallet, account, addressIndex)
}

// ImportAddress derives the keys of a recovered address.
func (s *Service) ImportAddress(
	recovered RecoverResult, wallet *Seed,
) (*Address, error) {
	if wallet == nil {
		return nil, ErrNullWallet
	}

	address, err := s.deriveAddress(
		wallet, recovered.AccountIndex, recovered.AddressIndex,
	)
	if err != nil {
		return nil, err
	}
	address.Address = recovered.Address
	return address, nil
}

// CreateAddressDetail returns the detail of the first address of an account.
func (s *Service) CreateAddressDetail(
	walletID string, account uint32,
) AddressDetail {
	return AddressDetail{
		WalletID:       walletID,
		Account:        account,
		Change:         changeIndex,
		KeyIndex:       addressIndex,
		DerivationType: s.derivationType,
	}
}

// SaveWalletAndComposeAddressDetail creates a wallet from entropy, or from
// random entropy if none is given, persists it along with its first address
// and returns the detail and the string form of that address.
func (s *Service) SaveWalletAndComposeAddressDetail(
	ctx context.Context, storage Storage, entropy []byte,
) (*AddressDetail, string, error) {
	if entropy == nil {
		buf, err := NewEntropy()
		if err != nil {
			return nil, "", err
		}
		defer bip32ed25519.Wipe(buf)
		entropy = buf
	}

	wallet, err := s.CreateWallet(entropy)
	if err != nil {
		return nil, "", err
	}
	address, err := s.GenerateAddress(wallet, 0)
	if err != nil {
		return nil, "", err
	}
	if err := storage.SaveWallet(ctx, wallet); err != nil {
		return nil, "", err
	}
	if err := storage.SaveAddress(ctx, address); err != nil {
		return nil, "", err
	}

	detail := s.CreateAddressDetail(wallet.ID, 0)
	return &detail, address.Address, nil
}

// RecoverAccounts walks the accounts of the wallet encoded by mnemonic and
// returns the addresses with on-chain history. Both accounts and addresses
// within an account are scanned until gap limit consecutive empty ones are
// found. If none has history, the first address is returned.
func (s *Service) RecoverAccounts(
	ctx context.Context, mnemonic []string,
) ([]RecoverResult, error) {
	seed, err := SeedFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(seed)

	sdk, release, err := s.sdkFor(seed)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		recovered    []RecoverResult
		firstAddress *RecoverResult
	)
	emptyAccounts := 0
	for account := uint32(0); emptyAccounts < s.gapLimit; account++ {
		emptyAddresses := 0
		for index := uint32(0); emptyAddresses < s.gapLimit; index++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			publicKey, err := s.generatePublicKey(sdk, account, index)
			if err != nil {
				return nil, NewSDKError(err)
			}
			address, err := EncodeAddress(publicKey)
			if err != nil {
				return nil, err
			}

			if account == 0 && index == 0 {
				firstAddress = &RecoverResult{Address: address}
			}

			lookup := s.fastLookup(ctx, address)
			if lookup == nil || !lookup.AccountExists {
				emptyAddresses++
				continue
			}

			recovered = append(recovered, RecoverResult{
				Address:      address,
				AccountIndex: account,
				AddressIndex: index,
				AlgoValue:    lookup.AlgoValue,
				USDValue:     lookup.USDValue,
			})
			emptyAddresses = 0
			emptyAccounts = 0
		}
		emptyAccounts++
	}

	if len(recovered) == 0 && firstAddress != nil {
		recovered = append(recovered, *firstAddress)
	}
	return recovered, nil
}

// DerivationPathString returns m/44'/283'/account'/0/index.
func DerivationPathString(account, index uint32) string {
	return AddressDerivationPath(account, index).String()
}

func (s *Service) deriveAddress(
	wallet *Seed, account, index uint32,
) (*Address, error) {
	seed, err := SeedFromEntropy(wallet.Entropy)
	if err != nil {
		return nil, ErrInvalidSeed
	}
	defer bip32ed25519.Wipe(seed)

	sdk, release, err := s.sdkFor(seed)
	if err != nil {
		return nil, err
	}
	defer release()

	publicKey, err := s.generatePublicKey(sdk, account, index)
	if err != nil {
		return nil, NewSDKError(err)
	}

	rootKey, err := RootKey(seed)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(rootKey)

	privateKey, err := sdk.DeriveKey(DeriveKeyDraft{
		RootKey:        rootKey,
		BIP44Path:      AddressDerivationPath(account, index),
		IsPrivate:      true,
		DerivationType: s.derivationType,
	})
	if err != nil {
		return nil, NewSDKError(err)
	}

	address, err := EncodeAddress(publicKey)
	if err != nil {
		return nil, err
	}

	return &Address{
		WalletID:       wallet.ID,
		Address:        address,
		PublicKey:      publicKey,
		PrivateKey:     privateKey,
		Account:        account,
		Change:         changeIndex,
		KeyIndex:       index,
		DerivationType: s.derivationType,
	}, nil
}

func (s *Service) generatePublicKey(
	sdk SDK, account, index uint32,
) ([]byte, error) {
	return sdk.GenerateKey(KeyGenDraft{
		Context:        AddressContext,
		Account:        account,
		Change:         changeIndex,
		KeyIndex:       index,
		DerivationType: s.derivationType,
	})
}

// fastLookup returns nil if the address cannot be looked up.
func (s *Service) fastLookup(
	ctx context.Context, address string,
) *AccountFastLookup {
	if s.lookup == nil {
		return nil
	}
	lookup, err := s.lookup.FastLookup(ctx, address)
	if err != nil {
		return nil
	}
	return lookup
}

// sdkFor returns the SDK to use for seed and the func releasing it.
func (s *Service) sdkFor(seed []byte) (SDK, func(), error) {
	if s.sdk != nil {
		return s.sdk, func() {}, nil
	}
	sdk, err := NewSDK(seed)
	if err != nil {
		return nil, nil, err
	}
	return sdk, sdk.(*xhdSDK).Wipe, nil
}
