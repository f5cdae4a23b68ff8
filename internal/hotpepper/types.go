package hotpepper

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Genre is a HotPepper genre master record. Catch is only set on shop genres.
type Genre struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Catch string `json:"catch,omitempty"`
}

// PhotoSet holds the image URLs for one device class.
type PhotoSet struct {
	L string `json:"l"`
	M string `json:"m,omitempty"`
	S string `json:"s"`
}

// Photo holds shop photos.
type Photo struct {
	PC     *PhotoSet `json:"pc"`
	Mobile *PhotoSet `json:"mobile"`
}

// URLs holds shop links.
type URLs struct {
	PC string `json:"pc"`
}

// Budget is the average budget band of a shop.
type Budget struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Average string `json:"average"`
}

// Shop is one gourmet search result. Nested objects are pointers because the
// API omits them for some shops; use the accessor methods to read them.
type Shop struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Access   string  `json:"access"`
	Open     string  `json:"open"`
	Close    string  `json:"close"`
	Catch    string  `json:"catch"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Genre    *Genre  `json:"genre"`
	SubGenre *Genre  `json:"sub_genre"`
	Budget   *Budget `json:"budget"`
	Photo    *Photo  `json:"photo"`
	URLs     *URLs   `json:"urls"`
}

// GenreName returns the main genre name, or "".
func (s *Shop) GenreName() string {
	if s.Genre == nil {
		return ""
	}
	return s.Genre.Name
}

// GenreCatch returns the genre catch copy, or "".
func (s *Shop) GenreCatch() string {
	if s.Genre == nil {
		return ""
	}
	return s.Genre.Catch
}

// SubGenreName returns the sub-genre name, or "".
func (s *Shop) SubGenreName() string {
	if s.SubGenre == nil {
		return ""
	}
	return s.SubGenre.Name
}

// GenreLabel joins genre and sub-genre names with a space, skipping empties.
func (s *Shop) GenreLabel() string {
	return strings.TrimSpace(s.GenreName() + " " + s.SubGenreName())
}

// PhotoURL returns the large PC photo, falling back to the large mobile photo, or "".
func (s *Shop) PhotoURL() string {
	if s.Photo == nil {
		return ""
	}
	if s.Photo.PC != nil && s.Photo.PC.L != "" {
		return s.Photo.PC.L
	}
	if s.Photo.Mobile != nil {
		return s.Photo.Mobile.L
	}
	return ""
}

// SiteURL returns the shop's HotPepper page, or "".
func (s *Shop) SiteURL() string {
	if s.URLs == nil {
		return ""
	}
	return s.URLs.PC
}

// SearchResult is the parsed gourmet response.
type SearchResult struct {
	ResultsAvailable int
	ResultsReturned  int
	Shops            []Shop
}

// Count returns the number of shops actually present.
func (r *SearchResult) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Shops)
}

// apiError is the error block HotPepper returns inside a 200 response.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type gourmetResponse struct {
	Results struct {
		ResultsAvailable flexInt    `json:"results_available"`
		ResultsReturned  flexInt    `json:"results_returned"`
		Shop             []Shop     `json:"shop"`
		Error            []apiError `json:"error"`
	} `json:"results"`
}

type genreResponse struct {
	Results struct {
		Genre []Genre    `json:"genre"`
		Error []apiError `json:"error"`
	} `json:"results"`
}

// flexInt decodes a JSON number or a numeric string ("10"), which is how
// HotPepper encodes its counters.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		var f float64
		if ferr := json.Unmarshal([]byte(s), &f); ferr != nil {
			return err
		}
		v = int(f)
	}
	*n = flexInt(v)
	return nil
}
