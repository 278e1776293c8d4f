package internal_callregistry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() Registry {
	return NewRegistry(commons.NewNopLogger())
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Create(CallRecord{CallID: "CA1", PhoneNumber: "15551230001", Name: "Ann"}))

	rec, err := reg.Get("CA1")
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, rec.Status, "status defaults to initiated")
	assert.Equal(t, "Ann", rec.Name)
	assert.Nil(t, rec.RecordingURL)
	assert.Nil(t, rec.Transcript)
	assert.Nil(t, rec.GatheredResponse)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_CreateEmptyOptionalsAreAbsent(t *testing.T) {
	reg := newTestRegistry()
	empty, url := "", "https://rec/1"
	require.NoError(t, reg.Create(CallRecord{
		CallID: "CA1", PhoneNumber: "1", RecordingURL: &url, Transcript: &empty, GatheredResponse: &empty,
	}))

	rec, err := reg.Get("CA1")
	require.NoError(t, err)
	require.NotNil(t, rec.RecordingURL)
	assert.Equal(t, url, *rec.RecordingURL)
	assert.Nil(t, rec.Transcript)
	assert.Nil(t, rec.GatheredResponse)
}

func TestRegistry_CreateDuplicate(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Create(CallRecord{CallID: "CA1", PhoneNumber: "1"}))

	err := reg.Create(CallRecord{CallID: "CA1", PhoneNumber: "2"})
	assert.ErrorIs(t, err, ErrDuplicateCall)

	rec, err := reg.Get("CA1")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.PhoneNumber, "original record must survive")
}

func TestRegistry_CreateInvalid(t *testing.T) {
	reg := newTestRegistry()
	assert.ErrorIs(t, reg.Create(CallRecord{PhoneNumber: "1"}), ErrInvalidRecord)
	assert.ErrorIs(t, reg.Create(CallRecord{CallID: "CA1"}), ErrInvalidRecord)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_UnknownCall(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = reg.Update("missing", func(rec *CallRecord) bool { return true })
	assert.ErrorIs(t, err, ErrUnknownCall)

	_, _, err = reg.Apply("missing", StatusEvent(StatusCompleted))
	assert.ErrorIs(t, err, ErrUnknownCall)
	assert.Equal(t, 0, reg.Len(), "callbacks must never create records")
}

func TestRegistry_ApplyTerminalIsFinal(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Create(CallRecord{CallID: "CA1", PhoneNumber: "1"}))

	_, changed, err := reg.Apply("CA1", StatusEvent(StatusRinging))
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = reg.Apply("CA1", StatusEvent(StatusCompleted))
	require.NoError(t, err)
	assert.True(t, changed)

	rec, changed, err := reg.Apply("CA1", StatusEvent(StatusFailed))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusCompleted, rec.Status)
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.Create(CallRecord{CallID: "CA1", PhoneNumber: "1"}))
	_, _, err := reg.Apply("CA1", RecordingEvent("https://rec/1"))
	require.NoError(t, err)

	snap := reg.Snapshot()
	rec := snap["CA1"]
	*rec.RecordingURL = "tampered"
	rec.Status = StatusFailed

	stored, err := reg.Get("CA1")
	require.NoError(t, err)
	assert.Equal(t, "https://rec/1", *stored.RecordingURL)
	assert.Equal(t, StatusInitiated, stored.Status)
}

// Status, recording and transcript callbacks for the same call racing each
// other must all land.
func TestRegistry_ConcurrentUpdatesNoLostWrites(t *testing.T) {
	reg := newTestRegistry()
	const calls = 50
	for i := 0; i < calls; i++ {
		require.NoError(t, reg.Create(CallRecord{CallID: fmt.Sprintf("CA%d", i), PhoneNumber: "1"}))
	}

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		id := fmt.Sprintf("CA%d", i)
		wg.Add(4)
		go func() {
			defer wg.Done()
			_, _, _ = reg.Apply(id, StatusEvent(StatusCompleted))
		}()
		go func() {
			defer wg.Done()
			_, _, _ = reg.Apply(id, RecordingEvent("https://rec/"+id))
		}()
		go func() {
			defer wg.Done()
			_, _, _ = reg.Apply(id, TranscriptEvent("text "+id))
		}()
		go func() {
			defer wg.Done()
			_ = reg.Snapshot()
		}()
	}
	wg.Wait()

	for id, rec := range reg.Snapshot() {
		assert.Equal(t, StatusCompleted, rec.Status, id)
		require.NotNil(t, rec.RecordingURL, id)
		assert.Equal(t, "https://rec/"+id, *rec.RecordingURL)
		require.NotNil(t, rec.Transcript, id)
		assert.Equal(t, "text "+id, *rec.Transcript)
	}
}

func TestRegistry_ConcurrentCreates(t *testing.T) {
	reg := newTestRegistry()
	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every id is created twice
			errs <- reg.Create(CallRecord{CallID: fmt.Sprintf("CA%d", i%50), PhoneNumber: "1"})
		}(i)
	}
	wg.Wait()
	close(errs)

	duplicates := 0
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrDuplicateCall)
			duplicates++
		}
	}
	assert.Equal(t, 50, duplicates)
	assert.Equal(t, 50, reg.Len())
}
