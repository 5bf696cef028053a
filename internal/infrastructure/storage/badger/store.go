package walletstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const (
	walletKeyPrefix  = "wallet"
	addressKeyPrefix = "address"
)

// ErrCorruptedData is returned when a stored record cannot be decrypted or
// decoded.
var ErrCorruptedData = errors.New("stored data is corrupted")

// ErrNullAddress ...
var ErrNullAddress = errors.New("address must not be null")

var _ hdwallet.Storage = (*Store)(nil)

type walletRecord struct {
	Key    string
	Cypher []byte
}

type addressRecord struct {
	Key      string
	WalletID string `badgerhold:"index"`
	Cypher   []byte
}

// StoreOpts is the struct given to NewStore. An empty Datadir opens an
// in-memory store.
type StoreOpts struct {
	Datadir    string
	Passphrase string
	ScryptN    int
	Logger     badger.Logger
}

func (o StoreOpts) validate() error {
	if len(o.Passphrase) <= 0 {
		return hdwallet.ErrNullPassphrase
	}
	return nil
}

// GCInterval is how often the value log of a persistent store is garbage
// collected.
var GCInterval = 30 * time.Minute

// Store is an encrypted hdwallet.Storage backed by badger.
type Store struct {
	db         *badgerhold.Store
	cypherOpts hdwallet.CypherOpts

	quit      chan struct{}
	gcDone    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewStore opens the store. Every record is encrypted with a key stretched
// from the passphrase.
func NewStore(opts StoreOpts) (*Store, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var dbDir string
	if len(opts.Datadir) > 0 {
		dbDir = filepath.Join(opts.Datadir, "wallets")
	}

	db, err := createDb(dbDir, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}
	s := &Store{
		db: db,
		cypherOpts: hdwallet.CypherOpts{
			Passphrase: opts.Passphrase,
			ScryptN:    opts.ScryptN,
		},
		quit: make(chan struct{}),
	}
	if len(dbDir) > 0 {
		s.gcDone = make(chan struct{})
		go s.runValueLogGC()
	}
	return s, nil
}

func (s *Store) SaveWallet(ctx context.Context, wallet *hdwallet.Seed) error {
	if wallet == nil {
		return hdwallet.ErrNullWallet
	}

	cypher, err := s.encrypt(wallet)
	if err != nil {
		return err
	}
	key := walletKey(wallet.ID)
	return s.db.Upsert(key, &walletRecord{key, cypher})
}

func (s *Store) GetWallet(
	ctx context.Context, walletID string,
) (*hdwallet.Seed, error) {
	var record walletRecord
	if err := s.db.Get(walletKey(walletID), &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var wallet hdwallet.Seed
	if err := s.decrypt(record.Cypher, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *Store) DeleteWallet(ctx context.Context, walletID string) error {
	if err := s.db.Delete(walletKey(walletID), walletRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) SaveAddress(ctx context.Context, address *hdwallet.Address) error {
	if address == nil {
		return ErrNullAddress
	}

	cypher, err := s.encrypt(address)
	if err != nil {
		return err
	}
	key := addressKey(address.WalletID, address.Address)
	return s.db.Upsert(key, &addressRecord{key, address.WalletID, cypher})
}

func (s *Store) GetAddress(
	ctx context.Context, walletID, address string,
) (*hdwallet.Address, error) {
	var record addressRecord
	if err := s.db.Get(addressKey(walletID, address), &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var addr hdwallet.Address
	if err := s.decrypt(record.Cypher, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Store) GetAddresses(
	ctx context.Context, walletID string,
) ([]hdwallet.Address, error) {
	var records []addressRecord
	query := badgerhold.Where("WalletID").Eq(walletID).Index("WalletID").SortBy("Key")
	if err := s.db.Find(&records, query); err != nil {
		return nil, err
	}

	addresses := make([]hdwallet.Address, 0, len(records))
	for _, record := range records {
		var addr hdwallet.Address
		if err := s.decrypt(record.Cypher, &addr); err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

func (s *Store) DeleteAddress(
	ctx context.Context, walletID, address string,
) error {
	err := s.db.Delete(addressKey(walletID, address), addressRecord{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

// Close stops the value log GC and closes the db. It is safe to call it
// more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.gcDone != nil {
			<-s.gcDone
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) runValueLogGC() {
	defer close(s.gcDone)

	ticker := time.NewTicker(GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.db.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Store) encrypt(value interface{}) ([]byte, error) {
	plaintext, err := badgerhold.DefaultEncode(value)
	if err != nil {
		return nil, err
	}
	return hdwallet.Encrypt(plaintext, s.cypherOpts)
}

func (s *Store) decrypt(cypher []byte, value interface{}) error {
	plaintext, err := hdwallet.Decrypt(cypher, s.cypherOpts)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCorruptedData, err)
	}
	if err := badgerhold.DefaultDecode(plaintext, value); err != nil {
		return fmt.Errorf("%w: %s", ErrCorruptedData, err)
	}
	return nil
}

func walletKey(walletID string) string {
	return fmt.Sprintf("%s.%s", walletKeyPrefix, walletID)
}

func addressKey(walletID, address string) string {
	return fmt.Sprintf("%s.%s.%s", addressKeyPrefix, walletID, address)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
