package passcode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPrefs struct {
	values map[string]string
	getErr error
	putErr error
	puts   int
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string]string)}
}

func (m *memoryPrefs) GetPreference(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryPrefs) PutPreference(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.values[key] = value
	return nil
}

func typeCode(t *testing.T, g *Gate, code string) Outcome {
	t.Helper()
	outcome := Pending
	for _, r := range code {
		var err error
		outcome, err = g.Type(context.Background(), r)
		require.NoError(t, err)
	}
	return outcome
}

func TestFirstRunStoresCode(t *testing.T) {
	prefs := newMemoryPrefs()
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	assert.True(t, g.FirstRun())
	assert.Equal(t, "Create Passcode", g.Prompt())

	outcome := typeCode(t, g, "7391")
	assert.Equal(t, Created, outcome)
	assert.True(t, outcome.Unlocked())
	assert.Equal(t, "7391", prefs.values[PreferenceKey])
	assert.False(t, g.FirstRun())
	assert.Equal(t, 0, g.Filled())
}

func TestStoredCodeGrantsAccess(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[PreferenceKey] = "0000"
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	assert.False(t, g.FirstRun())
	assert.Equal(t, "Enter Passcode", g.Prompt())
	assert.Equal(t, Granted, typeCode(t, g, "0000"))
	assert.Equal(t, 0, prefs.puts)
}

func TestEveryOtherCodeIsDenied(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[PreferenceKey] = "4821"
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		code := fmt.Sprintf("%04d", i)
		outcome, err := g.Submit(context.Background(), code)
		require.NoError(t, err)
		if code == "4821" {
			assert.Equal(t, Granted, outcome)
			continue
		}
		require.Equal(t, Denied, outcome, code)
		require.Equal(t, 0, g.Filled())
	}
	assert.Equal(t, "4821", prefs.values[PreferenceKey])
}

func TestSubmitNonDigitCodeVerbatim(t *testing.T) {
	prefs := newMemoryPrefs()
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	outcome, err := g.Submit(context.Background(), "ab#é")
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, "ab#é", prefs.values[PreferenceKey])

	outcome, err = g.Submit(context.Background(), "ab#e")
	require.NoError(t, err)
	assert.Equal(t, Denied, outcome)
}

func TestSubmitRejectsWrongLength(t *testing.T) {
	g, err := NewGate(context.Background(), newMemoryPrefs(), nil)
	require.NoError(t, err)

	_, err = g.Submit(context.Background(), "123")
	assert.ErrorIs(t, err, ErrLength)
	_, err = g.Submit(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrLength)
	assert.True(t, g.FirstRun())
}

func TestTypeIgnoresNonDigits(t *testing.T) {
	g, err := NewGate(context.Background(), newMemoryPrefs(), nil)
	require.NoError(t, err)

	assert.Equal(t, Pending, typeCode(t, g, "1a2 3"))
	assert.Equal(t, 3, g.Filled())
}

func TestBackspaceAndReset(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[PreferenceKey] = "1235"
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	typeCode(t, g, "123")
	g.Backspace()
	assert.Equal(t, 2, g.Filled())
	assert.Equal(t, Granted, typeCode(t, g, "35"))

	typeCode(t, g, "99")
	g.Reset()
	assert.Equal(t, 0, g.Filled())
	g.Backspace()
	assert.Equal(t, 0, g.Filled())
}

func TestWrongTypedCodeClearsBuffer(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[PreferenceKey] = "1111"
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	assert.Equal(t, Denied, typeCode(t, g, "2222"))
	assert.Equal(t, 0, g.Filled())
	assert.Equal(t, Granted, typeCode(t, g, "1111"))
}

func TestNewGateReadError(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.getErr = errors.New("disk gone")

	_, err := NewGate(context.Background(), prefs, nil)
	assert.ErrorIs(t, err, prefs.getErr)
}

func TestCreateFailureKeepsFirstRun(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.putErr = errors.New("read-only")
	g, err := NewGate(context.Background(), prefs, nil)
	require.NoError(t, err)

	_, err = g.Submit(context.Background(), "5555")
	assert.ErrorIs(t, err, prefs.putErr)
	assert.True(t, g.FirstRun())
}
