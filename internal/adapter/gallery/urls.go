package gallery

import "strings"

// FileURL returns the proxied original of an image
func FileURL(baseURL, imageID string) string {
	return strings.TrimRight(baseURL, "/") + "/traq/files/" + imageID
}

// ThumbnailURL returns the proxied thumbnail of an image
func ThumbnailURL(baseURL, imageID string) string {
	return FileURL(baseURL, imageID) + "/thumbnail"
}

func AlbumURL(baseURL, albumID string) string {
	return strings.TrimRight(baseURL, "/") + "/albums/" + albumID
}
