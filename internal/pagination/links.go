package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// BuildLinks returns the next and previous page URLs for a page that started
// at offset and returned `returned` records.
//
// next is only set when limit is set and the page came back full; a full
// page suggests more records but does not guarantee them. previous is set
// whenever offset > 0 and points at max(offset-limit, 0).
func BuildLinks(baseURL string, limit *int, offset, returned int, useCursor bool) (next, previous *string, err error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse base url: %w", err)
	}

	if limit != nil && *limit > 0 && returned == *limit {
		link := pageURL(base, *limit, offset+*limit, useCursor)
		next = &link
	}

	if offset > 0 {
		prevOffset := 0
		if limit != nil {
			prevOffset = max(offset-*limit, 0)
		}
		lim := 0
		if limit != nil {
			lim = *limit
		}
		link := pageURL(base, lim, prevOffset, useCursor)
		previous = &link
	}

	return next, previous, nil
}

func pageURL(base *url.URL, limit, offset int, useCursor bool) string {
	u := *base
	q := u.Query()
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if useCursor {
		q.Del("offset")
		q.Set("cursor", EncodeCursor(offset))
	} else {
		q.Del("cursor")
		q.Set("offset", strconv.Itoa(offset))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
