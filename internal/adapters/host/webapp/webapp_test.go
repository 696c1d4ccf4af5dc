package webapp

import (
	"testing"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInitData = "query_id=AAHdF6IQAAAAAN0XohDhrOrc" +
	"&user=%7B%22id%22%3A279058397%2C%22first_name%22%3A%22Vladislav%22%2C%22username%22%3A%22vdkfrost%22%2C%22language_code%22%3A%22ru%22%2C%22is_premium%22%3Atrue%7D" +
	"&auth_date=1662771648" +
	"&hash=c501b71e775f74ce10e377dea85a7ea24ecd640b223ea86dfe453e0eaed2e2b2"

func TestParseInitData(t *testing.T) {
	t.Parallel()

	unsafe, err := ParseInitData(sampleInitData)
	require.NoError(t, err)

	assert.Equal(t, "AAHdF6IQAAAAAN0XohDhrOrc", unsafe.QueryID)
	assert.Equal(t, int64(1662771648), unsafe.AuthDate)
	assert.Equal(t, "c501b71e775f74ce10e377dea85a7ea24ecd640b223ea86dfe453e0eaed2e2b2", unsafe.Hash)
	require.NotNil(t, unsafe.User)
	assert.Equal(t, domain.HostUser{
		ID:           "279058397",
		FirstName:    "Vladislav",
		Username:     "vdkfrost",
		LanguageCode: "ru",
		IsPremium:    true,
	}, *unsafe.User)
}

func TestParseInitDataWithoutUser(t *testing.T) {
	t.Parallel()

	unsafe, err := ParseInitData("query_id=abc&auth_date=1&hash=h")
	require.NoError(t, err)
	assert.Nil(t, unsafe.User)
}

func TestParseInitDataRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "bad escape", raw: "user=%zz"},
		{name: "bad user json", raw: "user=%7Bnot-json"},
		{name: "bad auth date", raw: "auth_date=yesterday"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseInitData(tc.raw)
			assert.ErrorIs(t, err, domain.ErrInvalidInitData)
		})
	}
}

func TestEncodeInitDataRoundTrip(t *testing.T) {
	t.Parallel()

	want := ports.InitDataUnsafe{
		QueryID:    "q-1",
		User:       &domain.HostUser{ID: "42", Username: "alice"},
		AuthDate:   1700000000,
		Hash:       "deadbeef",
		StartParam: "promo",
	}

	raw, err := EncodeInitData(want)
	require.NoError(t, err)

	got, err := ParseInitData(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWebAppRecordsReadyAndExpand(t *testing.T) {
	t.Parallel()

	app, err := New(Config{InitData: sampleInitData})
	require.NoError(t, err)

	assert.False(t, app.IsReady())
	assert.False(t, app.IsExpanded())
	app.Ready()
	app.Expand()
	assert.True(t, app.IsReady())
	assert.True(t, app.IsExpanded())
	assert.Equal(t, sampleInitData, app.InitData())
	assert.Equal(t, "tdesktop", app.Platform())
}

func TestWebAppInitDataUnsafeReturnsCopy(t *testing.T) {
	t.Parallel()

	app, err := New(Config{InitData: sampleInitData, Platform: "ios"})
	require.NoError(t, err)

	first := app.InitDataUnsafe()
	first.User.Username = "mutated"

	assert.Equal(t, "vdkfrost", app.InitDataUnsafe().User.Username)
	assert.Equal(t, "ios", app.Platform())
}

func TestWebAppEventsAndBackButton(t *testing.T) {
	t.Parallel()

	app, err := New(Config{InitData: sampleInitData})
	require.NoError(t, err)

	var order []string
	app.OnEvent(domain.HostEventViewportChanged, func() { order = append(order, "first") })
	app.OnEvent(domain.HostEventViewportChanged, func() { order = append(order, "second") })
	app.OnEvent("themeChanged", func() { order = append(order, "theme") })
	app.OnEvent(domain.HostEventViewportChanged, nil)

	app.Emit(domain.HostEventViewportChanged)
	assert.Equal(t, []string{"first", "second"}, order)

	clicks := 0
	app.BackButton().OnClick(func() { clicks++ })
	app.Back()
	app.Back()
	assert.Equal(t, 2, clicks)
}

func TestNewRejectsInvalidInitData(t *testing.T) {
	t.Parallel()

	_, err := New(Config{InitData: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInitData)
}
