// Package imageconv holds the codec collaborators. The conversion
// pipeline only sees the entity.Codec interface; everything format
// specific lives here.
package imageconv

import "image_conversion/entity"

// Select returns the codec implementation named in the config.
func Select(codec, target string, maxResolution int) entity.Codec {
	if codec == "ffmpeg" {
		return NewFFmpegConverter(target, maxResolution)
	}
	return NewConverter(target, maxResolution)
}

func targetExt(target string) string {
	switch target {
	case "png":
		return ".png"
	case "webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func targetContentType(target string) string {
	switch target {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
