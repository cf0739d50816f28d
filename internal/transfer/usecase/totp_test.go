package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
)

func TestGenerateTOTP(t *testing.T) {
	f := newFixture(t)
	f.uc.otp = otp.NewTOTP(f.clock, 30, 6)

	first, err := f.uc.GenerateTOTP(context.Background(), GenerateTOTPInput{Secret: "JBSWY3DPEHPK3PXP"})
	if err != nil {
		t.Fatalf("GenerateTOTP() error = %v", err)
	}
	again, _ := f.uc.GenerateTOTP(context.Background(), GenerateTOTPInput{Secret: "JBSWY3DPEHPK3PXP"})
	if first.Value != again.Value || len(first.Value) != 6 {
		t.Errorf("codes in one step got = %q and %q", first.Value, again.Value)
	}
	if first.RemainingSeconds < 1 || first.RemainingSeconds > 30 {
		t.Errorf("remaining seconds got = %d", first.RemainingSeconds)
	}

	if _, err := f.uc.GenerateTOTP(context.Background(), GenerateTOTPInput{}); errorType(err) != goerror.TypeValidation {
		t.Errorf("empty secret error = %v, want validation", err)
	}
}

func TestGenerateTOTPInvalidSecret(t *testing.T) {
	f := newFixture(t)
	f.otp.generate = func(string) (otp.Code, error) { return otp.Code{}, errors.New("illegal base32 data") }

	_, err := f.uc.GenerateTOTP(context.Background(), GenerateTOTPInput{Secret: "not-base32!"})
	if errorType(err) != goerror.TypeValidation {
		t.Errorf("GenerateTOTP() error = %v, want validation", err)
	}
}

func TestParseTOTPURI(t *testing.T) {
	f := newFixture(t)

	got, err := f.uc.ParseTOTPURI(context.Background(), ParseTOTPURIInput{
		URI: "otpauth://totp/Bank:ops@corp.test?secret=JBSWY3DPEHPK3PXP&issuer=Bank",
	})
	if err != nil {
		t.Fatalf("ParseTOTPURI() error = %v", err)
	}
	if got.Secret != "JBSWY3DPEHPK3PXP" || got.Issuer != "Bank" || got.Digits != 6 || got.Period != 30 {
		t.Errorf("ParseTOTPURI() got = %+v", got)
	}

	for _, uri := range []string{"otpauth://totp/Bank:ops?issuer=Bank", "::not a uri"} {
		if _, err := f.uc.ParseTOTPURI(context.Background(), ParseTOTPURIInput{URI: uri}); errorType(err) != goerror.TypeValidation {
			t.Errorf("ParseTOTPURI(%q) error = %v, want validation", uri, err)
		}
	}
}
