package utils

import (
	"net/url"
	"strings"
)

// RegionURL builds the listing page URL of a region, e.g.
// https://reality.bazos.cz/ostrava/.
func RegionURL(baseURL, region string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return "", err
	}
	return ToAbsoluteURL(base, url.PathEscape(region)+"/")
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// ListingIDFromHref returns the second-to-last "/" separated segment of a
// listing href ("/inzerat/172345678/byt-2-1.php" yields "172345678").
// It returns nil when the href has no "/" or the segment is empty.
func ListingIDFromHref(href string) *string {
	if !strings.Contains(href, "/") {
		return nil
	}
	parts := strings.Split(href, "/")
	id := parts[len(parts)-2]
	if id == "" {
		return nil
	}
	return &id
}
