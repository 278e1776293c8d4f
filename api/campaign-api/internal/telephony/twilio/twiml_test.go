package internal_twilio_telephony

import (
	"testing"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCallbacks() internal_telephony.CallbackURLs {
	return internal_telephony.NewCallbackBuilder("https://calls.example.com", Routes).For("", "")
}

func TestVoiceScript(t *testing.T) {
	out, err := VoiceScript(Script{
		CompanyName: "dowell",
		Name:        "Ann",
		Message:     "Your order has shipped.",
		Callbacks:   testCallbacks(),
	})
	require.NoError(t, err)

	assert.Contains(t, out, "<Response>")
	assert.Contains(t, out, "Hello Ann, this is an automated call from dowell.")
	assert.Contains(t, out, "Your order has shipped.")
	assert.Contains(t, out, "<Gather")
	assert.Contains(t, out, `input="speech"`)
	assert.Contains(t, out, `timeout="5"`)
	assert.Contains(t, out, `hints="yes, no, call back later"`)
	assert.Contains(t, out, "https://calls.example.com/gather-result")
	assert.Contains(t, out, "<Record")
	assert.Contains(t, out, `transcribe="true"`)
	assert.Contains(t, out, "https://calls.example.com/transcription-callback")
}

func TestVoiceScript_NoMessage(t *testing.T) {
	out, err := VoiceScript(Script{CompanyName: "dowell", Callbacks: testCallbacks()})
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, this is an automated call from dowell.")
	assert.Contains(t, out, ClosingLine)
}

func TestReplyScript(t *testing.T) {
	out, err := ReplyScript("Great, thank you for confirming.", testCallbacks())
	require.NoError(t, err)
	assert.Contains(t, out, "Great, thank you for confirming.")
	assert.Contains(t, out, "https://calls.example.com/recording-callback")
}

func TestHangupScript(t *testing.T) {
	out, err := HangupScript()
	require.NoError(t, err)
	assert.Contains(t, out, "<Hangup")
}
