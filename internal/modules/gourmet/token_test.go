package gourmet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/gourmet-linebot-go/internal/errors"
	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
)

func TestSearchTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := []SearchToken{
		{Action: ActionSearchRestaurants, Lat: 35.0, Lng: 139.0, Range: 3},
		{Action: ActionSearchRestaurants, Lat: 35.6694, Lng: 139.7033, Range: 5, Genre: "G001"},
		{Action: ActionGenreSearch, Lat: -33.8688, Lng: 151.2093, Range: 1},
		{Action: ActionGenreSearch, Lat: 90, Lng: -180, Range: 2},
	}
	for _, want := range tokens {
		data := want.Encode()
		assert.LessOrEqual(t, len(data), lineutil.MaxPostbackData)

		got, err := DecodeSearchToken(data)
		require.NoError(t, err, data)
		assert.Equal(t, want, got)
	}
}

func TestSearchTokenEncode(t *testing.T) {
	t.Parallel()

	token := SearchToken{Action: ActionSearchRestaurants, Lat: 35, Lng: 139, Range: 3, Genre: "G001"}
	assert.Equal(t, "action=search_restaurants&genre=G001&lat=35&lng=139&range=3", token.Encode())

	token.Genre = ""
	assert.Equal(t, "action=search_restaurants&lat=35&lng=139&range=3", token.Encode())
}

func TestDecodeSearchTokenInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"foreign format", "course$detail$1131U1001"},
		{"unknown action", "action=delete_everything&lat=35&lng=139&range=3"},
		{"missing lat", "action=search_restaurants&lng=139&range=3"},
		{"missing range", "action=search_restaurants&lat=35&lng=139"},
		{"latitude out of range", "action=search_restaurants&lat=91&lng=139&range=3"},
		{"longitude out of range", "action=search_restaurants&lat=35&lng=181&range=3"},
		{"range out of range", "action=search_restaurants&lat=35&lng=139&range=9"},
		{"non-numeric lat", "action=search_restaurants&lat=north&lng=139&range=3"},
		{"NaN lat", "action=search_restaurants&lat=NaN&lng=139&range=3"},
		{"bad genre", "action=search_restaurants&genre=G0%2601&lat=35&lng=139&range=3"},
		{"bad escape", "action=search_restaurants&lat=%zz&lng=139&range=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeSearchToken(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, domerrors.ErrInvalidPostback)
		})
	}
}

func TestDecodeSearchTokenValidationDetail(t *testing.T) {
	t.Parallel()

	_, err := DecodeSearchToken("action=search_restaurants&lat=35&lng=139&range=0")
	require.Error(t, err)

	var verr *domerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Range", verr.Field)
	assert.ErrorIs(t, err, domerrors.ErrInvalidInput)
}

func TestSearchTokenParams(t *testing.T) {
	t.Parallel()

	params := SearchToken{Action: ActionSearchRestaurants, Lat: 35, Lng: 139, Range: 3, Genre: "G002"}.Params()
	assert.Equal(t, "35", params.Get(hotpepper.ParamLat))
	assert.Equal(t, "139", params.Get(hotpepper.ParamLng))
	assert.Equal(t, "3", params.Get(hotpepper.ParamRange))
	assert.Equal(t, "G002", params.Get(hotpepper.ParamGenre))

	params = SearchToken{Action: ActionSearchRestaurants, Lat: 35, Lng: 139, Range: 3}.Params()
	assert.Equal(t, 3, params.Len())
	assert.Empty(t, params.Get(hotpepper.ParamGenre))
}
