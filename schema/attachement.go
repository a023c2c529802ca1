package schema

// Attachement message attachement
type Attachement struct {
	// ImageURLs attached image urls, data urls (data:image/jpeg;base64,...) are accepted
	ImageURLs []string `json:"image_url,omitempty"`
}

// AddImageURL appends an image url to the attachement
func (a *Attachement) AddImageURL(link string) *Attachement {
	a.ImageURLs = append(a.ImageURLs, link)
	return a
}
