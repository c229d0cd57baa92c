// Package media classifies ticket attachment URLs and describes how
// clients should render them, both as conversation thumbnails and in
// the fullscreen viewer.
package media

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the rendering category of an attachment.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var videoExts = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
	".mkv":  {},
	".avi":  {},
	".m4v":  {},
	".3gp":  {},
}

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".heic": {},
}

// Classify determines the kind of a media URL from its file extension.
// Query strings and fragments are ignored. Anything that is not a known
// video extension renders as an image; that matches how unknown files
// degrade most gracefully in the conversation view.
func Classify(rawURL string) Kind {
	if IsVideo(rawURL) {
		return KindVideo
	}
	return KindImage
}

// IsVideo reports whether the URL points at a video file.
func IsVideo(rawURL string) bool {
	_, ok := videoExts[extOf(rawURL)]
	return ok
}

// IsKnownExt reports whether the URL carries a recognized image or
// video extension. Uploads with unrecognized extensions are rejected
// before they reach storage.
func IsKnownExt(rawURL string) bool {
	ext := extOf(rawURL)
	if _, ok := videoExts[ext]; ok {
		return true
	}
	_, ok := imageExts[ext]
	return ok
}

func extOf(rawURL string) string {
	trimmed := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	return strings.ToLower(path.Ext(trimmed))
}

// Thumbnail describes how an attachment renders inline in the
// conversation. Videos show a static frame with a play glyph on top so
// the bubble never autoplays.
type Thumbnail struct {
	URL         string `json:"url"`
	Kind        Kind   `json:"kind"`
	PlayOverlay bool   `json:"play_overlay"`
}

// ThumbnailFor builds the inline descriptor for a media URL.
func ThumbnailFor(rawURL string) Thumbnail {
	kind := Classify(rawURL)
	return Thumbnail{
		URL:         rawURL,
		Kind:        kind,
		PlayOverlay: kind == KindVideo,
	}
}

// Viewer describes the fullscreen presentation of an attachment.
// Images open pinch-zoomable and fitted to the screen. Videos start
// playing immediately, loop, and expose transport controls.
type Viewer struct {
	URL          string `json:"url"`
	Kind         Kind   `json:"kind"`
	FitToScreen  bool   `json:"fit_to_screen"`
	Zoomable     bool   `json:"zoomable"`
	Autoplay     bool   `json:"autoplay"`
	Loop         bool   `json:"loop"`
	ShowControls bool   `json:"show_controls"`
}

// ViewerFor builds the fullscreen descriptor for a media URL.
func ViewerFor(rawURL string) Viewer {
	switch Classify(rawURL) {
	case KindVideo:
		return Viewer{
			URL:          rawURL,
			Kind:         KindVideo,
			Autoplay:     true,
			Loop:         true,
			ShowControls: true,
		}
	default:
		return Viewer{
			URL:         rawURL,
			Kind:        KindImage,
			FitToScreen: true,
			Zoomable:    true,
		}
	}
}
