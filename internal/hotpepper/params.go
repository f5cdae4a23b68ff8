package hotpepper

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names understood by the gourmet endpoint.
const (
	ParamKeyword = "keyword"
	ParamLat     = "lat"
	ParamLng     = "lng"
	ParamRange   = "range"
	ParamGenre   = "genre"
)

type param struct {
	key   string
	value string
}

// Params is an ordered set of search filters. Values are stored raw and
// escaped individually when the request URL is built.
type Params struct {
	pairs []param
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{}
}

// KeywordParams returns parameters for a free-text keyword search.
func KeywordParams(keyword string) *Params {
	return NewParams().Set(ParamKeyword, keyword)
}

// LocationParams returns parameters for a search around a point.
// rng is the HotPepper range code (1: 300m ... 5: 3000m).
func LocationParams(lat, lng float64, rng int) *Params {
	return NewParams().
		Set(ParamLat, FormatCoordinate(lat)).
		Set(ParamLng, FormatCoordinate(lng)).
		Set(ParamRange, strconv.Itoa(rng))
}

// Set adds or replaces a parameter. A replaced parameter keeps its position.
// Empty values are skipped.
func (p *Params) Set(key, value string) *Params {
	if value == "" {
		return p
	}
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return p
		}
	}
	p.pairs = append(p.pairs, param{key: key, value: value})
	return p
}

// Get returns the raw value for key, or "".
func (p *Params) Get(key string) string {
	if p == nil {
		return ""
	}
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value
		}
	}
	return ""
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pairs)
}

// appendTo writes each parameter as "&name=value" in insertion order.
func (p *Params) appendTo(b *strings.Builder) {
	if p == nil {
		return
	}
	for _, kv := range p.pairs {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(kv.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.value))
	}
}

// FormatCoordinate renders a latitude or longitude without trailing zeros
// so that it parses back to the same float64.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// buildURL joins base, the fixed key/format(/count) prefix and params.
// count <= 0 omits the count parameter.
func buildURL(base, apiKey string, count int, params *Params) string {
	var b strings.Builder
	b.WriteString(base)
	if strings.Contains(base, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("key=")
	b.WriteString(url.QueryEscape(apiKey))
	b.WriteString("&format=json")
	if count > 0 {
		b.WriteString("&count=")
		b.WriteString(strconv.Itoa(count))
	}
	params.appendTo(&b)
	return b.String()
}

// redactURL hides the API key so URLs can be logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
