package catalog

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// ImageRef is the wire shape of a prop image reference. Clients historically
// sent either a bare URL string or an object with an image_url field; the
// ambiguity is resolved once here, at the JSON boundary, instead of being
// re-checked at each use.
type ImageRef struct {
	URL string
}

// UnmarshalJSON accepts "https://…" or {"image_url": "https://…"}.
// An object without a usable image_url decodes to an empty URL, which
// callers skip, matching the lenient historical behavior.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = s
		return nil
	}

	var obj struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "image reference must be a string or object")
	}
	r.URL = obj.ImageURL
	return nil
}

// MarshalJSON always emits the canonical bare-string form.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.URL)
}

// ImageURLs flattens refs into non-empty URL strings, capped at MaxImages.
func ImageURLs(refs []ImageRef) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.URL == "" {
			continue
		}
		urls = append(urls, ref.URL)
		if len(urls) == MaxImages {
			break
		}
	}
	return urls
}
