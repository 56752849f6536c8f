package transfer

type DriveFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mime_type"`
	Size          int64  `json:"size"`
	ThumbnailLink string `json:"thumbnail_link,omitempty"`
}
