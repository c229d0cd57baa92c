package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("VideoExtensions", func(t *testing.T) {
		for _, u := range []string{
			"/uploads/2026-01-05/clip.mp4",
			"/uploads/2026-01-05/clip.MOV",
			"https://cdn.example.com/a/b/clip.webm",
			"clip.mkv",
			"clip.avi",
			"clip.m4v",
			"clip.3gp",
		} {
			assert.Equal(t, KindVideo, Classify(u), "url %s", u)
			assert.True(t, IsVideo(u), "url %s", u)
		}
	})

	t.Run("ImageExtensions", func(t *testing.T) {
		for _, u := range []string{
			"/uploads/2026-01-05/photo.jpg",
			"/uploads/2026-01-05/photo.PNG",
			"photo.webp",
			"photo.heic",
		} {
			assert.Equal(t, KindImage, Classify(u), "url %s", u)
			assert.False(t, IsVideo(u), "url %s", u)
		}
	})

	t.Run("UnknownExtensionFallsBackToImage", func(t *testing.T) {
		assert.Equal(t, KindImage, Classify("/uploads/report.pdf"))
		assert.Equal(t, KindImage, Classify("/uploads/noext"))
		assert.Equal(t, KindImage, Classify(""))
	})

	t.Run("QueryStringIgnored", func(t *testing.T) {
		assert.Equal(t, KindVideo, Classify("https://cdn.example.com/clip.mp4?token=abc&exp=123"))
		assert.Equal(t, KindImage, Classify("https://cdn.example.com/photo.jpg#section"))
	})
}

func TestIsKnownExt(t *testing.T) {
	assert.True(t, IsKnownExt("photo.jpeg"))
	assert.True(t, IsKnownExt("clip.mp4"))
	assert.False(t, IsKnownExt("report.pdf"))
	assert.False(t, IsKnownExt("archive.zip"))
	assert.False(t, IsKnownExt("noext"))
}

func TestThumbnailFor(t *testing.T) {
	t.Run("VideoShowsPlayOverlay", func(t *testing.T) {
		thumb := ThumbnailFor("/uploads/clip.mp4")
		assert.Equal(t, KindVideo, thumb.Kind)
		assert.True(t, thumb.PlayOverlay)
		assert.Equal(t, "/uploads/clip.mp4", thumb.URL)
	})

	t.Run("ImageHasNoOverlay", func(t *testing.T) {
		thumb := ThumbnailFor("/uploads/photo.jpg")
		assert.Equal(t, KindImage, thumb.Kind)
		assert.False(t, thumb.PlayOverlay)
	})
}

func TestViewerFor(t *testing.T) {
	t.Run("ImageViewer", func(t *testing.T) {
		v := ViewerFor("/uploads/photo.jpg")
		assert.Equal(t, KindImage, v.Kind)
		assert.True(t, v.FitToScreen)
		assert.True(t, v.Zoomable)
		assert.False(t, v.Autoplay)
		assert.False(t, v.Loop)
		assert.False(t, v.ShowControls)
	})

	t.Run("VideoViewer", func(t *testing.T) {
		v := ViewerFor("/uploads/clip.mov")
		assert.Equal(t, KindVideo, v.Kind)
		assert.True(t, v.Autoplay)
		assert.True(t, v.Loop)
		assert.True(t, v.ShowControls)
		assert.False(t, v.Zoomable)
	})
}
