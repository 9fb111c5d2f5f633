package hydration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = time.Date(2026, 10, 17, 14, 5, 9, 0, time.UTC)

func TestFormat_EmptyUntilReady(t *testing.T) {
	g := NewGate()
	f, err := NewDateFormatter(g, "en-US", FormatOptions{})
	require.NoError(t, err)

	assert.Empty(t, f.Format(sample))

	g.MarkReady()
	assert.Equal(t, "Oct 17, 2026, 2:05 PM", f.Format(sample))
}

func TestFormat_Locales(t *testing.T) {
	cases := []struct {
		locale string
		opts   FormatOptions
		want   string
	}{
		{"en-US", FormatOptions{DateStyle: StyleShort}, "10/17/26"},
		{"en-US", FormatOptions{DateStyle: StyleLong, TimeStyle: StyleMedium}, "October 17, 2026, 2:05:09 PM"},
		{"en-GB", FormatOptions{}, "17 Oct 2026, 14:05"},
		{"de-DE", FormatOptions{}, "17.10.2026, 14:05"},
		{"en-US", FormatOptions{TimeStyle: StyleShort}, "2:05 PM"},
	}
	for _, tc := range cases {
		f, err := NewDateFormatter(NewReadyGate(), tc.locale, tc.opts)
		require.NoError(t, err, tc.locale)
		assert.Equal(t, tc.want, f.Format(sample), tc.locale)
	}
}

func TestFormat_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	f, err := NewDateFormatter(NewReadyGate(), "de-DE", FormatOptions{TimeStyle: StyleShort, Location: loc})
	require.NoError(t, err)
	assert.Equal(t, "16:05", f.Format(sample))
}

func TestNewDateFormatter_Errors(t *testing.T) {
	_, err := NewDateFormatter(nil, "en-US", FormatOptions{})
	assert.Error(t, err)

	_, err = NewDateFormatter(NewGate(), "not a locale!!", FormatOptions{})
	assert.Error(t, err)

	_, err = NewDateFormatter(NewGate(), "en-US", FormatOptions{DateStyle: Style(9)})
	assert.Error(t, err)
}

func TestWithGate(t *testing.T) {
	pending, err := NewDateFormatter(NewGate(), "en-US", FormatOptions{})
	require.NoError(t, err)
	live := pending.WithGate(NewReadyGate())

	assert.Empty(t, pending.Format(sample))
	assert.NotEmpty(t, live.Format(sample))
	assert.Equal(t, "en-US", live.Locale().String())
}
