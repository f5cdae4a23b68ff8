package gourmet

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	domerrors "github.com/garyellow/gourmet-linebot-go/internal/errors"
	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
)

// Postback actions carried in a SearchToken.
const (
	ActionSearchRestaurants = "search_restaurants"
	ActionGenreSearch       = "genre_search"
)

// Postback token field names.
const (
	tokenAction = "action"
	tokenLat    = "lat"
	tokenLng    = "lng"
	tokenRange  = "range"
	tokenGenre  = "genre"
)

var validate = validator.New()

// SearchToken is the state a location search carries between turns.
// It travels inside postback data, so everything the next step needs is here.
type SearchToken struct {
	Action string  `validate:"required,oneof=search_restaurants genre_search"`
	Lat    float64 `validate:"gte=-90,lte=90"`
	Lng    float64 `validate:"gte=-180,lte=180"`
	Range  int     `validate:"min=1,max=5"`
	Genre  string  `validate:"omitempty,max=16,alphanum"`
}

// Encode returns the token as a form-encoded string with sorted keys,
// e.g. "action=search_restaurants&genre=G001&lat=35&lng=139&range=3".
func (t SearchToken) Encode() string {
	v := url.Values{}
	v.Set(tokenAction, t.Action)
	v.Set(tokenLat, hotpepper.FormatCoordinate(t.Lat))
	v.Set(tokenLng, hotpepper.FormatCoordinate(t.Lng))
	v.Set(tokenRange, strconv.Itoa(t.Range))
	if t.Genre != "" {
		v.Set(tokenGenre, t.Genre)
	}
	return v.Encode()
}

// Params converts the token into gourmet search parameters.
func (t SearchToken) Params() *hotpepper.Params {
	return hotpepper.LocationParams(t.Lat, t.Lng, t.Range).Set(hotpepper.ParamGenre, t.Genre)
}

// DecodeSearchToken parses and validates postback data produced by Encode.
// Every failure wraps errors.ErrInvalidPostback.
func DecodeSearchToken(data string) (SearchToken, error) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return SearchToken{}, fmt.Errorf("%w: %v", domerrors.ErrInvalidPostback, err)
	}

	for _, key := range []string{tokenAction, tokenLat, tokenLng, tokenRange} {
		if values.Get(key) == "" {
			return SearchToken{}, fmt.Errorf("%w: %w: %s", domerrors.ErrInvalidPostback, domerrors.ErrMissingParameter, key)
		}
	}

	lat, err := strconv.ParseFloat(values.Get(tokenLat), 64)
	if err != nil {
		return SearchToken{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidPostback, domerrors.NewValidationError(tokenLat, err.Error()))
	}
	lng, err := strconv.ParseFloat(values.Get(tokenLng), 64)
	if err != nil {
		return SearchToken{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidPostback, domerrors.NewValidationError(tokenLng, err.Error()))
	}
	rng, err := strconv.Atoi(values.Get(tokenRange))
	if err != nil {
		return SearchToken{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidPostback, domerrors.NewValidationError(tokenRange, err.Error()))
	}

	token := SearchToken{
		Action: values.Get(tokenAction),
		Lat:    lat,
		Lng:    lng,
		Range:  rng,
		Genre:  values.Get(tokenGenre),
	}
	if err := token.Validate(); err != nil {
		return SearchToken{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidPostback, err)
	}
	return token, nil
}

// Validate checks the token fields. The first failing field is reported as
// an *errors.ValidationError.
func (t SearchToken) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domerrors.NewValidationError(fe.Field(), fmt.Sprintf("failed on %q", fe.Tag()))
	}
	return err
}
