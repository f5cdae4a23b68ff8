package gourmet

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithResultLimit sets how many shops a search requests (1 to MaxResults).
func WithResultLimit(limit int) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.resultLimit = min(limit, MaxResults)
		}
	}
}

// WithSearchRange sets the HotPepper range code used for location searches.
func WithSearchRange(rng int) HandlerOption {
	return func(h *Handler) {
		if rng >= 1 && rng <= 5 {
			h.searchRange = rng
		}
	}
}
