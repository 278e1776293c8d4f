package internal_twilio_telephony

import (
	"context"
	"errors"
	"testing"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCallsApi struct {
	created   *openapi.CreateCallParams
	updated   *openapi.UpdateCallParams
	updateSid string
	sid       *string
	err       error
}

func (f *fakeCallsApi) CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error) {
	f.created = params
	if f.err != nil {
		return nil, f.err
	}
	return &openapi.ApiV2010Call{Sid: f.sid}, nil
}

func (f *fakeCallsApi) UpdateCall(sid string, params *openapi.UpdateCallParams) (*openapi.ApiV2010Call, error) {
	f.updateSid = sid
	f.updated = params
	if f.err != nil {
		return nil, f.err
	}
	return &openapi.ApiV2010Call{Sid: &sid}, nil
}

func TestTwilio_Place(t *testing.T) {
	sid := "CA0001"
	fake := &fakeCallsApi{sid: &sid}
	gw := newTwilio(commons.NewNopLogger(), fake, "15550000000")

	callbacks := internal_telephony.NewCallbackBuilder("https://calls.example.com", Routes).For("Ann", "")
	got, err := gw.Place(context.Background(), internal_telephony.PlaceRequest{To: "15551230001", Callbacks: callbacks})
	require.NoError(t, err)
	assert.Equal(t, "CA0001", got)

	require.NotNil(t, fake.created)
	assert.Equal(t, "+15551230001", *fake.created.To)
	assert.Equal(t, "+15550000000", *fake.created.From)
	assert.Equal(t, "https://calls.example.com/handle-call?name=Ann", *fake.created.Url)
	assert.Equal(t, "https://calls.example.com/call-status", *fake.created.StatusCallback)
	assert.True(t, *fake.created.Record)
	assert.Equal(t, statusCallbackEvents, *fake.created.StatusCallbackEvent)
}

func TestTwilio_PlaceFailure(t *testing.T) {
	fake := &fakeCallsApi{err: errors.New("21211 invalid 'To' phone number")}
	gw := newTwilio(commons.NewNopLogger(), fake, "+15550000000")

	_, err := gw.Place(context.Background(), internal_telephony.PlaceRequest{To: "1"})
	assert.ErrorIs(t, err, internal_telephony.ErrProvider)
}

func TestTwilio_PlaceEmptySid(t *testing.T) {
	gw := newTwilio(commons.NewNopLogger(), &fakeCallsApi{}, "+15550000000")

	_, err := gw.Place(context.Background(), internal_telephony.PlaceRequest{To: "15551230001"})
	assert.ErrorIs(t, err, internal_telephony.ErrProvider)
}

func TestTwilio_PlaceCancelledContext(t *testing.T) {
	fake := &fakeCallsApi{}
	gw := newTwilio(commons.NewNopLogger(), fake, "+15550000000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Place(ctx, internal_telephony.PlaceRequest{To: "15551230001"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, fake.created, "no provider request after cancellation")
}

func TestTwilio_Cancel(t *testing.T) {
	fake := &fakeCallsApi{}
	gw := newTwilio(commons.NewNopLogger(), fake, "+15550000000")

	require.NoError(t, gw.Cancel(context.Background(), "CA0001"))
	assert.Equal(t, "CA0001", fake.updateSid)
	assert.Equal(t, "canceled", *fake.updated.Status)

	fake.err = errors.New("call not in a cancelable state")
	assert.ErrorIs(t, gw.Cancel(context.Background(), "CA0001"), internal_telephony.ErrProvider)
}

func TestClientParam(t *testing.T) {
	_, err := ClientParam(config.TwilioConfig{AuthToken: "x"})
	assert.Error(t, err)
	_, err = ClientParam(config.TwilioConfig{AccountSid: "AC1"})
	assert.Error(t, err)

	params, err := ClientParam(config.TwilioConfig{AccountSid: "AC1", AuthToken: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "AC1", params.Username)
	assert.Equal(t, "secret", params.Password)
}
