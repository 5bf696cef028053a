package telemetry

import (
	"errors"
	"time"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK      = "ok"
	resultError   = "error"
	resultValid   = "valid"
	resultInvalid = "invalid"
)

// Metrics are the collectors updated by InstrumentedSDK.
type Metrics struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered with reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hdwallet",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "Number of SDK operations by outcome.",
	}, []string{"operation", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hdwallet",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "Duration of SDK operations.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"operation"})

	if err := reg.Register(calls); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if !errors.As(err, &are) {
			return nil, err
		}
		calls = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(duration); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if !errors.As(err, &are) {
			return nil, err
		}
		duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	return &Metrics{calls, duration}, nil
}

// InstrumentedSDK counts and times the operations of the wrapped SDK.
// Inputs and outputs are never recorded.
type InstrumentedSDK struct {
	next    hdwallet.SDK
	metrics *Metrics
}

func NewInstrumentedSDK(next hdwallet.SDK, metrics *Metrics) *InstrumentedSDK {
	return &InstrumentedSDK{next, metrics}
}

func (s *InstrumentedSDK) DerivePublicChildNode(
	draft hdwallet.DeriveChildNodeDraft,
) ([]byte, error) {
	defer s.observe("derive_public_child_node", time.Now())
	out, err := s.next.DerivePublicChildNode(draft)
	s.count("derive_public_child_node", err)
	return out, err
}

func (s *InstrumentedSDK) DerivePrivateChildNode(
	draft hdwallet.DeriveChildNodeDraft,
) ([]byte, error) {
	defer s.observe("derive_private_child_node", time.Now())
	out, err := s.next.DerivePrivateChildNode(draft)
	s.count("derive_private_child_node", err)
	return out, err
}

func (s *InstrumentedSDK) DeriveKey(draft hdwallet.DeriveKeyDraft) ([]byte, error) {
	defer s.observe("derive_key", time.Now())
	out, err := s.next.DeriveKey(draft)
	s.count("derive_key", err)
	return out, err
}

func (s *InstrumentedSDK) GenerateKey(draft hdwallet.KeyGenDraft) ([]byte, error) {
	defer s.observe("generate_key", time.Now())
	out, err := s.next.GenerateKey(draft)
	s.count("generate_key", err)
	return out, err
}

func (s *InstrumentedSDK) SignAlgorandTransaction(
	draft hdwallet.SignAlgoTransactionDraft,
) ([]byte, error) {
	defer s.observe("sign_algorand_transaction", time.Now())
	out, err := s.next.SignAlgorandTransaction(draft)
	s.count("sign_algorand_transaction", err)
	return out, err
}

func (s *InstrumentedSDK) SignData(draft hdwallet.SignDataDraft) ([]byte, error) {
	defer s.observe("sign_data", time.Now())
	out, err := s.next.SignData(draft)
	s.count("sign_data", err)
	return out, err
}

func (s *InstrumentedSDK) VerifySignature(
	draft hdwallet.VerifySignatureDraft,
) bool {
	defer s.observe("verify_signature", time.Now())
	ok := s.next.VerifySignature(draft)
	s.countBool("verify_signature", ok)
	return ok
}

func (s *InstrumentedSDK) ValidateData(
	data []byte, metadata hdwallet.SignMetadata,
) (bool, error) {
	defer s.observe("validate_data", time.Now())
	ok, err := s.next.ValidateData(data, metadata)
	if err != nil {
		s.count("validate_data", err)
		return ok, err
	}
	s.countBool("validate_data", ok)
	return ok, nil
}

func (s *InstrumentedSDK) PerformECDH(draft hdwallet.ECDHDraft) ([]byte, error) {
	defer s.observe("perform_ecdh", time.Now())
	out, err := s.next.PerformECDH(draft)
	s.count("perform_ecdh", err)
	return out, err
}

// Wipe forwards to the wrapped SDK, if it can be wiped.
func (s *InstrumentedSDK) Wipe() {
	if w, ok := s.next.(interface{ Wipe() }); ok {
		w.Wipe()
	}
}

func (s *InstrumentedSDK) observe(operation string, start time.Time) {
	s.metrics.Duration.WithLabelValues(operation).
		Observe(time.Since(start).Seconds())
}

func (s *InstrumentedSDK) count(operation string, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	s.metrics.Calls.WithLabelValues(operation, result).Inc()
}

func (s *InstrumentedSDK) countBool(operation string, ok bool) {
	result := resultValid
	if !ok {
		result = resultInvalid
	}
	s.metrics.Calls.WithLabelValues(operation, result).Inc()
}
