package otp

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
)

const (
	defaultPeriod = 30
	defaultDigits = 6
)

// ErrSecretRequired is returned when a secret or an otpauth URI without one is given.
var ErrSecretRequired = errors.New("otp: secret is required")

// Code is a generated one-time code and how long it stays valid.
type Code struct {
	Value            string
	RemainingSeconds int
}

// URIParams holds the fields decoded from an otpauth URI.
type URIParams struct {
	Secret  string
	Issuer  string
	Account string
	Digits  int
	Period  uint
}

// Generator defines the contract for TOTP code generation.
type Generator interface {
	// Generate creates the code for the current step of the generator clock.
	Generate(secret string) (Code, error)
	// GenerateCode creates the code for the step containing at.
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements Generator using the Time-based One-Time Password algorithm.
//
// It holds no mutable state, so a single value is safe for concurrent use.
type TOTP struct {
	clock  clock.Clocker
	period uint
	digits otp.Digits
}

// NewTOTP constructs a TOTP instance.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. A nil clock uses wall time.
func NewTOTP(clk clock.Clocker, period uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if period == 0 {
		period = defaultPeriod
	}

	if clk == nil {
		clk = clock.New()
	}

	return &TOTP{
		clock:  clk,
		period: period,
		digits: digits,
	}
}

// Generate creates the code for the current time step.
func (o *TOTP) Generate(secret string) (Code, error) {
	now := o.clock.Now()

	value, err := o.GenerateCode(secret, now)
	if err != nil {
		return Code{}, err
	}

	return Code{
		Value:            value,
		RemainingSeconds: o.remaining(now),
	}, nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrSecretRequired
	}

	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    o.period,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func (o *TOTP) remaining(at time.Time) int {
	period := int64(o.period)
	return int(period - at.Unix()%period)
}

// ParseURI decodes an otpauth://totp URI.
//
// Missing digits and period default to 6 and 30.
func ParseURI(uri string) (URIParams, error) {
	key, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return URIParams{}, err
	}

	if key.Secret() == "" {
		return URIParams{}, ErrSecretRequired
	}

	period := uint(key.Period())
	if period == 0 {
		period = defaultPeriod
	}

	digits := key.Digits().Length()
	if digits == 0 {
		digits = defaultDigits
	}

	return URIParams{
		Secret:  key.Secret(),
		Issuer:  key.Issuer(),
		Account: key.AccountName(),
		Digits:  digits,
		Period:  period,
	}, nil
}
