package otp

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// TwilioVerifier implements Verifier against the Twilio Verify v2 API. Only
// raw status strings cross this boundary; no SDK types leak to callers.
type TwilioVerifier struct {
	client     *twilio.RestClient
	serviceSID string
}

// NewTwilioVerifier builds a Verify-backed verifier.
func NewTwilioVerifier(accountSID, authToken, serviceSID string) (*TwilioVerifier, error) {
	if accountSID == "" || authToken == "" || serviceSID == "" {
		return nil, errors.New("twilio account sid, auth token and verify service sid are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioVerifier{client: client, serviceSID: serviceSID}, nil
}

// Start asks Verify to send an SMS challenge to the phone number.
func (v *TwilioVerifier) Start(_ context.Context, phone string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel("sms")
	_, err := v.client.VerifyV2.CreateVerification(v.serviceSID, params)
	return err
}

// Check submits the code against the most recent challenge for the number and
// returns the provider's raw status.
func (v *TwilioVerifier) Check(_ context.Context, phone, code string) (string, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phone)
	params.SetCode(code)
	resp, err := v.client.VerifyV2.CreateVerificationCheck(v.serviceSID, params)
	if err != nil {
		return "", err
	}
	if resp.Status == nil {
		return "", errors.New("verification check returned no status")
	}
	return *resp.Status, nil
}
