package domain

// TagHistory is one day of usage of a trending tag.
type TagHistory struct {
	Day      string
	Uses     int64
	Accounts int64
}

// Tag is a trending hashtag.
type Tag struct {
	Name    string
	URL     string
	History []TagHistory
}

// Uses sums the usage counts over the whole history window.
func (t Tag) Uses() int64 {
	var n int64
	for _, h := range t.History {
		n += h.Uses
	}
	return n
}
