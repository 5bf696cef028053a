package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where wallets are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DerivationTypeKey is the truncation scheme used for child keys, either
	// khovratovich or peikert
	DerivationTypeKey = "DERIVATION_TYPE"
	// GapLimitKey is the number of consecutive unused addresses after which
	// account recovery stops scanning
	GapLimitKey = "GAP_LIMIT"
	// BatchConcurrencyKey is the number of transactions signed in parallel
	// within a batch, 0 or 1 means sequential
	BatchConcurrencyKey = "BATCH_CONCURRENCY"
	// ScryptNKey is the scrypt cost parameter used to encrypt stored secrets
	ScryptNKey = "SCRYPT_N"
	// PassphraseKey is the passphrase used to encrypt stored secrets
	PassphraseKey = "PASSPHRASE"
	// NoMetricsKey disables dumping SDK metrics to the datadir
	NoMetricsKey = "NO_METRICS"

	DbLocation       = "db"
	ProfilerLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("hdwallet", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("HDWALLET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DerivationTypeKey, bip32ed25519.Peikert.String())
	vip.SetDefault(GapLimitKey, 5)
	vip.SetDefault(BatchConcurrencyKey, 0)
	vip.SetDefault(ScryptNKey, 1<<15)
	vip.SetDefault(NoMetricsKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Set overrides the value of key, for example with a command line flag.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDerivationType() bip32ed25519.DerivationType {
	dt, _ := bip32ed25519.ParseDerivationType(GetString(DerivationTypeKey))
	return dt
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, err := bip32ed25519.ParseDerivationType(
		GetString(DerivationTypeKey),
	); err != nil {
		return fmt.Errorf("%s: %s", DerivationTypeKey, err)
	}

	if GetInt(GapLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", GapLimitKey)
	}

	if GetInt(BatchConcurrencyKey) < 0 {
		return fmt.Errorf("%s must not be negative", BatchConcurrencyKey)
	}

	n := GetInt(ScryptNKey)
	if n <= 1 || n&(n-1) != 0 {
		return fmt.Errorf("%s must be a power of 2 greater than 1", ScryptNKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	if !GetBool(NoMetricsKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
